package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/kenshaw/emoji"
	"github.com/rs/zerolog"
)

// ReactionToken identifies an emoji for reaction calls: either a guild custom
// emoji (ID set) or a plain unicode emoji.
type ReactionToken struct {
	Name string
	ID   string
}

// IsZero reports whether the token is empty.
func (t ReactionToken) IsZero() bool {
	return t.Name == "" && t.ID == ""
}

// APIName renders the token in the form the reaction endpoints expect:
// "name:id" for custom emoji, the emoji itself otherwise.
func (t ReactionToken) APIName() string {
	if t.ID != "" {
		return t.Name + ":" + t.ID
	}
	return t.Name
}

// EmojiResolver turns emoji names into reaction tokens. Guild custom emoji
// win over everything else, matched case insensitively; the guild list is
// fetched fresh on every call so renames are picked up immediately. Names
// that are not custom emoji are tried as shortcode aliases ("wave" or
// ":wave:"), and anything left is passed through as a literal unicode token —
// the gateway rejects invalid ones at dispatch time.
type EmojiResolver struct {
	s       Session
	guildID string
	log     zerolog.Logger
}

func NewEmojiResolver(s Session, guildID string, log zerolog.Logger) *EmojiResolver {
	return &EmojiResolver{s: s, guildID: guildID, log: log}
}

// Resolve maps a single emoji name to a reaction token.
func (r *EmojiResolver) Resolve(name string) ReactionToken {
	return tokenFor(r.guildEmoji(), name)
}

// ResolveAll maps a batch of names, fetching the guild emoji list once for
// the whole batch.
func (r *EmojiResolver) ResolveAll(names ...string) []ReactionToken {
	list := r.guildEmoji()
	tokens := make([]ReactionToken, 0, len(names))
	for _, name := range names {
		tokens = append(tokens, tokenFor(list, name))
	}
	return tokens
}

func (r *EmojiResolver) guildEmoji() []*discordgo.Emoji {
	list, err := r.s.GuildEmojis(r.guildID)
	if err != nil {
		r.log.Debug().Err(err).Msg("Guild emoji fetch failed, falling back to unicode")
		return nil
	}
	return list
}

func tokenFor(list []*discordgo.Emoji, name string) ReactionToken {
	for _, e := range list {
		if strings.EqualFold(e.Name, name) {
			return ReactionToken{Name: e.Name, ID: e.ID}
		}
	}
	if e := emoji.FromAlias(strings.Trim(name, ":")); e != nil {
		return ReactionToken{Name: e.Emoji}
	}
	return ReactionToken{Name: name}
}
