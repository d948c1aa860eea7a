package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Resolver maps symbolic names and ID strings to live guild entities. Every
// lookup fetches a fresh snapshot of the relevant collection; nothing is
// cached, so two resolutions moments apart may observe different guild state.
// Name matches are case insensitive and return the first hit in the order the
// API happens to return the collection. A miss is a nil result, not an error;
// errors are reserved for malformed input.
type Resolver struct {
	s       Session
	guildID string
	log     zerolog.Logger
}

func NewResolver(s Session, guildID string, log zerolog.Logger) *Resolver {
	return &Resolver{s: s, guildID: guildID, log: log}
}

// SanitizeChannelName strips a single leading # from a channel reference.
func SanitizeChannelName(name string) string {
	return strings.TrimPrefix(name, "#")
}

// Channel resolves a channel by name (with or without a leading #) or by ID
// string.
func (r *Resolver) Channel(name string) (*discordgo.Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("channel name was empty: %w", ErrInvalidArgument)
	}
	name = SanitizeChannelName(name)

	channels, err := r.s.GuildChannels(r.guildID)
	if err != nil {
		r.log.Debug().Err(err).Msg("Channel list fetch failed, treating as not found")
		return nil, nil
	}
	for _, ch := range channels {
		if strings.EqualFold(ch.Name, name) || ch.ID == name {
			return ch, nil
		}
	}
	return nil, nil
}

// ChannelByID resolves a channel by exact ID.
func (r *Resolver) ChannelByID(id string) (*discordgo.Channel, error) {
	if id == "" {
		return nil, fmt.Errorf("channel id was empty: %w", ErrInvalidArgument)
	}
	channels, err := r.s.GuildChannels(r.guildID)
	if err != nil {
		r.log.Debug().Err(err).Msg("Channel list fetch failed, treating as not found")
		return nil, nil
	}
	for _, ch := range channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, nil
}

// User resolves a guild member by display name.
func (r *Resolver) User(name string) (*discordgo.Member, error) {
	if name == "" {
		return nil, fmt.Errorf("user name was empty: %w", ErrInvalidArgument)
	}
	members, err := r.Members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if strings.EqualFold(displayName(m), name) {
			return m, nil
		}
	}
	return nil, nil
}

// UserByID resolves a guild member by exact user ID.
func (r *Resolver) UserByID(id string) (*discordgo.Member, error) {
	if id == "" {
		return nil, fmt.Errorf("user id was empty: %w", ErrInvalidArgument)
	}
	members, err := r.Members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.User != nil && m.User.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

// UserWithDiscriminator resolves a member by display name plus discriminator.
// Both parts must match.
func (r *Resolver) UserWithDiscriminator(name, discriminator string) (*discordgo.Member, error) {
	if name == "" || discriminator == "" {
		return nil, fmt.Errorf("user name or discriminator was empty: %w", ErrInvalidArgument)
	}
	members, err := r.Members()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if strings.EqualFold(displayName(m), name) && strings.EqualFold(m.User.Discriminator, discriminator) {
			return m, nil
		}
	}
	return nil, nil
}

// Role resolves a role by name or by ID string.
func (r *Resolver) Role(nameOrID string) (*discordgo.Role, error) {
	if nameOrID == "" {
		return nil, fmt.Errorf("role name was empty: %w", ErrInvalidArgument)
	}
	roles, err := r.Roles()
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, nameOrID) || role.ID == nameOrID {
			return role, nil
		}
	}
	return nil, nil
}

// RoleByID resolves a role by exact ID.
func (r *Resolver) RoleByID(id string) (*discordgo.Role, error) {
	if id == "" {
		return nil, fmt.Errorf("role id was empty: %w", ErrInvalidArgument)
	}
	roles, err := r.Roles()
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, nil
}

// Roles fetches the guild role list. Fetch failures are logged and reported
// as an empty result.
func (r *Resolver) Roles() ([]*discordgo.Role, error) {
	roles, err := r.s.GuildRoles(r.guildID)
	if err != nil {
		r.log.Debug().Err(err).Msg("Role list fetch failed, treating as not found")
		return nil, nil
	}
	return roles, nil
}

// Members fetches the full guild member list, paging past the API limit of
// 1000 members per request.
func (r *Resolver) Members() ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		batch, err := r.s.GuildMembers(r.guildID, after, 1000)
		if err != nil {
			r.log.Debug().Err(err).Msg("Member list fetch failed, treating as not found")
			return nil, nil
		}
		all = append(all, batch...)
		if len(batch) < 1000 {
			return all, nil
		}
		last := batch[len(batch)-1]
		if last.User == nil {
			return all, nil
		}
		after = last.User.ID
	}
}

// displayName is the member's guild nick when set, otherwise the account's
// global display name, otherwise the plain username.
func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
