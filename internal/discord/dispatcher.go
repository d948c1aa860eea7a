package discord

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Vitoster1098/PhantomBot/pkg/jobmgr"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Dispatcher is the chat-facing surface of the bot: it resolves symbolic
// channel/user/role/emoji references and issues messaging, reaction, role and
// presence operations against the gateway, riding out transient reconnect
// windows with a bounded retry instead of failing or looping forever.
//
// Transport failures on sends degrade to an absent result (nil message, nil
// error) after logging; only argument errors and an exhausted retry budget
// surface to the caller. Callers that care whether a send landed must check
// for a nil message.
type Dispatcher struct {
	s        Session
	guildID  string
	status   StatusFunc
	gate     *retryGate
	limiter  *rate.Limiter
	resolver *Resolver
	emoji    *EmojiResolver
	jobs     *jobmgr.Manager
	log      zerolog.Logger
}

// Option adjusts Dispatcher construction.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithRetryLimiter overrides the pacing of reconnect re-attempts.
func WithRetryLimiter(l *rate.Limiter) Option {
	return func(d *Dispatcher) { d.limiter = l }
}

// WithJobManager supplies a shared job manager for detached work.
func WithJobManager(m *jobmgr.Manager) Option {
	return func(d *Dispatcher) { d.jobs = m }
}

// New builds a Dispatcher bound to one guild. status reports the gateway
// connection state; wire it to a StatusTracker bound to the live session.
func New(s Session, guildID string, status StatusFunc, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		s:       s,
		guildID: guildID,
		status:  status,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.gate = newRetryGate(status, d.limiter, d.log)
	if d.jobs == nil {
		d.jobs = jobmgr.NewManager(d.log)
	}
	d.resolver = NewResolver(s, guildID, d.log)
	d.emoji = NewEmojiResolver(s, guildID, d.log)
	return d
}

// Resolver exposes the name/ID resolution layer.
func (d *Dispatcher) Resolver() *Resolver { return d.resolver }

// Emoji exposes the emoji resolution layer.
func (d *Dispatcher) Emoji() *EmojiResolver { return d.emoji }

// MessageResult carries the outcome of an asynchronous send.
type MessageResult struct {
	Message *discordgo.Message
	Err     error
}

// asyncResult runs fn in its own goroutine and delivers the outcome on a
// buffered channel, so an abandoned result never leaks the goroutine.
func asyncResult(fn func() (*discordgo.Message, error)) <-chan MessageResult {
	out := make(chan MessageResult, 1)
	go func() {
		m, err := fn()
		out <- MessageResult{Message: m, Err: err}
	}()
	return out
}

// SendMessage sends plain text to a channel and blocks until the send
// resolves.
func (d *Dispatcher) SendMessage(ctx context.Context, channel *discordgo.Channel, text string) (*discordgo.Message, error) {
	res := <-d.SendMessageAsync(ctx, channel, text)
	return res.Message, res.Err
}

// SendMessageAsync is the non-blocking form of SendMessage.
func (d *Dispatcher) SendMessageAsync(ctx context.Context, channel *discordgo.Channel, text string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		return d.sendMessage(ctx, channel, text)
	})
}

// SendMessageTo resolves a channel by name or ID and sends plain text to it.
func (d *Dispatcher) SendMessageTo(ctx context.Context, channelName, text string) (*discordgo.Message, error) {
	res := <-d.SendMessageToAsync(ctx, channelName, text)
	return res.Message, res.Err
}

// SendMessageToAsync is the non-blocking form of SendMessageTo.
func (d *Dispatcher) SendMessageToAsync(ctx context.Context, channelName, text string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		ch, err := d.channelWithRetry(ctx, channelName)
		if err != nil {
			return nil, err
		}
		return d.deliver(ctx, ch, text)
	})
}

func (d *Dispatcher) sendMessage(ctx context.Context, channel *discordgo.Channel, text string) (*discordgo.Message, error) {
	ch, err := resolveWithRetry(ctx, d.gate, "channel", func() (*discordgo.Channel, bool) {
		return channel, channel != nil
	})
	if err != nil {
		return nil, err
	}
	return d.deliver(ctx, ch, text)
}

// deliver routes a resolved channel to the right send path and swallows
// transport failures into an absent result.
func (d *Dispatcher) deliver(ctx context.Context, ch *discordgo.Channel, text string) (*discordgo.Message, error) {
	if ch.Type == discordgo.ChannelTypeDM {
		return d.sendToPrivateChannel(ctx, ch, text)
	}

	d.log.Info().Str("channel", ch.Name).Str("content", text).Msg("Chat message")
	m, err := d.s.ChannelMessageSend(ch.ID, text)
	if err != nil {
		d.log.Error().Err(err).Str("channel", ch.Name).Msg("Failed to send message")
		return nil, nil
	}
	return m, nil
}

// SendPrivateMessage opens (or reuses) the user's DM channel and sends text
// there.
func (d *Dispatcher) SendPrivateMessage(ctx context.Context, user *discordgo.User, text string) (*discordgo.Message, error) {
	res := <-d.SendPrivateMessageAsync(ctx, user, text)
	return res.Message, res.Err
}

// SendPrivateMessageAsync is the non-blocking form of SendPrivateMessage.
func (d *Dispatcher) SendPrivateMessageAsync(ctx context.Context, user *discordgo.User, text string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		if user == nil {
			return nil, fmt.Errorf("user was nil: %w", ErrInvalidArgument)
		}
		ch, err := d.s.UserChannelCreate(user.ID)
		if err != nil {
			d.log.Error().Err(err).Str("user", user.Username).Msg("Failed to open private channel")
			return nil, nil
		}
		return d.sendToPrivateChannel(ctx, ch, text)
	})
}

// SendPrivateMessageTo resolves a member by display name and DMs them.
func (d *Dispatcher) SendPrivateMessageTo(ctx context.Context, userName, text string) (*discordgo.Message, error) {
	res := <-d.SendPrivateMessageToAsync(ctx, userName, text)
	return res.Message, res.Err
}

// SendPrivateMessageToAsync is the non-blocking form of SendPrivateMessageTo.
func (d *Dispatcher) SendPrivateMessageToAsync(ctx context.Context, userName, text string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		member, err := d.resolver.User(userName)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, fmt.Errorf("user %q not found: %w", userName, ErrInvalidArgument)
		}
		return d.SendPrivateMessage(ctx, member.User, text)
	})
}

func (d *Dispatcher) sendToPrivateChannel(ctx context.Context, channel *discordgo.Channel, text string) (*discordgo.Message, error) {
	ch, err := resolveWithRetry(ctx, d.gate, "private channel", func() (*discordgo.Channel, bool) {
		return channel, channel != nil
	})
	if err != nil {
		return nil, err
	}

	recipient := ""
	if len(ch.Recipients) > 0 && ch.Recipients[0] != nil {
		recipient = strings.ToLower(ch.Recipients[0].Username)
	}
	d.log.Info().Str("recipient", recipient).Str("content", text).Msg("Direct message")

	m, err := d.s.ChannelMessageSend(ch.ID, text)
	if err != nil {
		d.log.Error().Err(err).Str("recipient", recipient).Msg("Failed to send direct message")
		return nil, nil
	}
	return m, nil
}

// SendEmbed sends a fully built embed to a channel.
func (d *Dispatcher) SendEmbed(ctx context.Context, channel *discordgo.Channel, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	res := <-d.SendEmbedAsync(ctx, channel, embed)
	return res.Message, res.Err
}

// SendEmbedAsync is the non-blocking form of SendEmbed.
func (d *Dispatcher) SendEmbedAsync(ctx context.Context, channel *discordgo.Channel, embed *discordgo.MessageEmbed) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		ch, err := resolveWithRetry(ctx, d.gate, "channel", func() (*discordgo.Channel, bool) {
			return channel, channel != nil
		})
		if err != nil {
			return nil, err
		}
		return d.deliverEmbed(ch, embed)
	})
}

// SendEmbedTo resolves a channel by name or ID and sends an embed to it.
func (d *Dispatcher) SendEmbedTo(ctx context.Context, channelName string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	res := <-d.SendEmbedToAsync(ctx, channelName, embed)
	return res.Message, res.Err
}

// SendEmbedToAsync is the non-blocking form of SendEmbedTo.
func (d *Dispatcher) SendEmbedToAsync(ctx context.Context, channelName string, embed *discordgo.MessageEmbed) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		ch, err := d.channelWithRetry(ctx, channelName)
		if err != nil {
			return nil, err
		}
		return d.deliverEmbed(ch, embed)
	})
}

// SendSimpleEmbed sends an embed with just an accent color and a description,
// the common case for command replies.
func (d *Dispatcher) SendSimpleEmbed(ctx context.Context, channel *discordgo.Channel, color, description string) (*discordgo.Message, error) {
	return d.SendEmbed(ctx, channel, simpleEmbed(color, description))
}

// SendSimpleEmbedAsync is the non-blocking form of SendSimpleEmbed.
func (d *Dispatcher) SendSimpleEmbedAsync(ctx context.Context, channel *discordgo.Channel, color, description string) <-chan MessageResult {
	return d.SendEmbedAsync(ctx, channel, simpleEmbed(color, description))
}

// SendSimpleEmbedTo is SendSimpleEmbed with channel resolution by name.
func (d *Dispatcher) SendSimpleEmbedTo(ctx context.Context, channelName, color, description string) (*discordgo.Message, error) {
	return d.SendEmbedTo(ctx, channelName, simpleEmbed(color, description))
}

// SendSimpleEmbedToAsync is the non-blocking form of SendSimpleEmbedTo.
func (d *Dispatcher) SendSimpleEmbedToAsync(ctx context.Context, channelName, color, description string) <-chan MessageResult {
	return d.SendEmbedToAsync(ctx, channelName, simpleEmbed(color, description))
}

func simpleEmbed(color, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       ParseColor(color).Int(),
		Description: description,
	}
}

func (d *Dispatcher) deliverEmbed(ch *discordgo.Channel, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageSendEmbed(ch.ID, embed)
	if err != nil {
		d.log.Error().Err(err).Str("channel", ch.Name).Msg("Failed to send embed")
		return nil, nil
	}
	summary := embed.Description
	if summary == "" {
		summary = embed.Title
	}
	d.log.Info().Str("channel", ch.Name).Str("content", summary).Msg("Embed message")
	return m, nil
}

// SendFile uploads a local file to a channel with optional accompanying text.
// Paths containing a parent-directory traversal are rejected outright.
func (d *Dispatcher) SendFile(ctx context.Context, channel *discordgo.Channel, text, path string) (*discordgo.Message, error) {
	res := <-d.SendFileAsync(ctx, channel, text, path)
	return res.Message, res.Err
}

// SendFileAsync is the non-blocking form of SendFile.
func (d *Dispatcher) SendFileAsync(ctx context.Context, channel *discordgo.Channel, text, path string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		ch, err := resolveWithRetry(ctx, d.gate, "channel", func() (*discordgo.Channel, bool) {
			return channel, channel != nil
		})
		if err != nil {
			return nil, err
		}
		return d.deliverFile(ch, text, path)
	})
}

// SendFileTo resolves a channel by name or ID and uploads a file there.
func (d *Dispatcher) SendFileTo(ctx context.Context, channelName, text, path string) (*discordgo.Message, error) {
	res := <-d.SendFileToAsync(ctx, channelName, text, path)
	return res.Message, res.Err
}

// SendFileToAsync is the non-blocking form of SendFileTo.
func (d *Dispatcher) SendFileToAsync(ctx context.Context, channelName, text, path string) <-chan MessageResult {
	return asyncResult(func() (*discordgo.Message, error) {
		ch, err := d.channelWithRetry(ctx, channelName)
		if err != nil {
			return nil, err
		}
		return d.deliverFile(ch, text, path)
	})
}

func (d *Dispatcher) deliverFile(ch *discordgo.Channel, text, path string) (*discordgo.Message, error) {
	if strings.Contains(path, "..") {
		d.log.Error().Str("channel", ch.Name).Str("path", path).Msg("Rejecting upload path containing '..'")
		return nil, fmt.Errorf("upload path %q: %w", path, ErrInvalidArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		d.log.Error().Err(err).Str("channel", ch.Name).Str("path", path).Msg("Failed to open upload")
		return nil, nil
	}
	defer f.Close()

	d.log.Info().Str("channel", ch.Name).Str("path", path).Str("content", text).Msg("File upload")
	m, err := d.s.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Content: text,
		Files:   []*discordgo.File{{Name: f.Name(), Reader: f}},
	})
	if err != nil {
		d.log.Error().Err(err).Str("channel", ch.Name).Str("path", path).Msg("Failed to send file")
		return nil, nil
	}
	return m, nil
}

// channelWithRetry resolves a channel name under the reconnect retry policy:
// each attempt re-fetches the channel list, so a lookup that misses only
// because the session just resumed can succeed on a later pass.
func (d *Dispatcher) channelWithRetry(ctx context.Context, channelName string) (*discordgo.Channel, error) {
	if channelName == "" {
		return nil, fmt.Errorf("channel name was empty: %w", ErrInvalidArgument)
	}
	return resolveWithRetry(ctx, d.gate, "channel "+channelName, func() (*discordgo.Channel, bool) {
		ch, err := d.resolver.Channel(channelName)
		if err != nil {
			return nil, false
		}
		return ch, ch != nil
	})
}
