package discord

import (
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Session is the slice of the discordgo API this layer consumes.
// *discordgo.Session satisfies it directly; tests supply fakes.
type Session interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberEdit(guildID, userID string, data *discordgo.GuildMemberParams, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildEmojis(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Emoji, error)

	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error

	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UpdateGameStatus(idle int, name string) error
	UpdateStreamingStatus(idle int, name string, url string) error
}

// ConnectionState mirrors the gateway connection lifecycle as far as the
// dispatch layer cares: after a resume some guild lookups transiently return
// nothing even though the entity exists, and that window is the only case
// where a missing handle is worth retrying.
type ConnectionState int32

const (
	StateNormal ConnectionState = iota
	StateReconnected
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateReconnected:
		return "reconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StatusFunc reports the current gateway connection state.
type StatusFunc func() ConnectionState

// reconnectGrace is how long lookups are treated as transiently unreliable
// after a gateway resume.
const reconnectGrace = 30 * time.Second

// StatusTracker derives a ConnectionState from discordgo gateway events.
// Bind it to a session before opening; pass its State method to New.
type StatusTracker struct {
	state atomic.Int32
	grace time.Duration
	log   zerolog.Logger
}

func NewStatusTracker(log zerolog.Logger) *StatusTracker {
	return &StatusTracker{grace: reconnectGrace, log: log}
}

// State returns the current connection state.
func (t *StatusTracker) State() ConnectionState {
	return ConnectionState(t.state.Load())
}

// Set overrides the tracked state.
func (t *StatusTracker) Set(s ConnectionState) {
	t.state.Store(int32(s))
}

// Bind registers gateway event handlers on the session.
func (t *StatusTracker) Bind(dg *discordgo.Session) {
	dg.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		t.log.Info().Msg("Gateway ready")
		t.Set(StateNormal)
	})
	dg.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		t.log.Warn().Msg("Gateway session resumed, entity lookups may lag")
		t.Set(StateReconnected)
		time.AfterFunc(t.grace, func() {
			// Only decay if nothing else moved the state meanwhile.
			t.state.CompareAndSwap(int32(StateReconnected), int32(StateNormal))
		})
	})
	dg.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		t.log.Error().Msg("Gateway disconnected")
		t.Set(StateFailed)
	})
}
