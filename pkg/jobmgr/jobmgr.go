// Package jobmgr runs named background jobs with cancellation and in-memory
// tracking. A name identifies at most one running job, which is how callers
// dedupe work like "one purge per channel at a time". Jobs remove themselves
// on completion.
package jobmgr

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Job
	log  zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{jobs: make(map[string]*Job), log: log}
}

// StartAsync runs the job in its own goroutine and returns immediately.
// Returns an error if a job with the same name is already running.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job %q is already running", name)
	}
	m.jobs[name] = &Job{Name: name, Cancel: cancel}
	m.mu.Unlock()

	go func() {
		defer cancel()
		m.log.Debug().Str("job", name).Msg("Job started")

		if err := runner(ctx); err != nil {
			m.log.Error().Err(err).Str("job", name).Msg("Job failed")
		} else {
			m.log.Debug().Str("job", name).Msg("Job done")
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()

	return nil
}

// Running reports whether a job with the given name is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, job := range m.jobs {
		job.Cancel()
		delete(m.jobs, name)
	}
}

// List returns the names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	return out
}
