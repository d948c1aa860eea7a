package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidArgument marks calls with a missing or malformed required
	// argument. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConnectionFailing is raised when a handle stays unresolvable across
	// the whole retry budget after a gateway reconnect.
	ErrConnectionFailing = errors.New("connection failing")
)

// maxIteration bounds how many times an operation is re-attempted while the
// gateway reports a recent reconnect.
const maxIteration = 5

// retryInterval spaces reconnect re-attempts.
const retryInterval = 250 * time.Millisecond

// retryGate applies the reconnect retry policy around handle resolution.
// A missing handle is retried only while the connection state says a resume
// just happened; otherwise it is an immediate argument error. The limiter
// spaces re-attempts so a flapping gateway is not hammered.
type retryGate struct {
	status  StatusFunc
	limiter *rate.Limiter
	log     zerolog.Logger
}

func newRetryGate(status StatusFunc, limiter *rate.Limiter, log zerolog.Logger) *retryGate {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(retryInterval), 1)
	}
	return &retryGate{status: status, limiter: limiter, log: log}
}

// resolveWithRetry runs resolve until it reports found, the state stops
// indicating a reconnect, or the retry budget runs out. Written as a plain
// loop so the bound is visible and testable.
func resolveWithRetry[T any](ctx context.Context, g *retryGate, what string, resolve func() (T, bool)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, ok := resolve()
		if ok {
			return v, nil
		}
		if g.status() != StateReconnected {
			return zero, fmt.Errorf("%s was nil: %w", what, ErrInvalidArgument)
		}
		if attempt >= maxIteration {
			g.log.Error().Str("target", what).Int("attempts", attempt).Msg("Retry budget exhausted after reconnect")
			return zero, fmt.Errorf("resolving %s: %w", what, ErrConnectionFailing)
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, err
		}
		g.log.Debug().Str("target", what).Int("attempt", attempt+1).Msg("Handle missing during reconnect, retrying")
	}
}
