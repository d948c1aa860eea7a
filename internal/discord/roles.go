package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Role-mutating operations share one shape: validate arguments up front,
// resolve the acting member, quietly no-op when the member cannot be
// resolved, and log-but-swallow transport failures so one failed role edit
// cannot take down an unrelated caller.

// Roles returns the guild's role list.
func (d *Dispatcher) Roles() ([]*discordgo.Role, error) {
	return d.resolver.Roles()
}

// Role resolves a single role by name or ID.
func (d *Dispatcher) Role(nameOrID string) (*discordgo.Role, error) {
	return d.resolver.Role(nameOrID)
}

// RolesNamed resolves a list of role names to role objects, in order. Names
// that do not resolve yield nil entries.
func (d *Dispatcher) RolesNamed(names ...string) ([]*discordgo.Role, error) {
	out := make([]*discordgo.Role, len(names))
	for i, name := range names {
		role, err := d.resolver.Role(name)
		if err != nil {
			return nil, err
		}
		out[i] = role
	}
	return out, nil
}

// UserRoles returns the roles currently on a user, or an empty slice when the
// user cannot be resolved as a guild member.
func (d *Dispatcher) UserRoles(user *discordgo.User) ([]*discordgo.Role, error) {
	if user == nil {
		return nil, fmt.Errorf("user was nil: %w", ErrInvalidArgument)
	}
	m := d.member(user.ID)
	if m == nil {
		return []*discordgo.Role{}, nil
	}

	all, err := d.resolver.Roles()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*discordgo.Role, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	roles := make([]*discordgo.Role, 0, len(m.Roles))
	for _, id := range m.Roles {
		if r, ok := byID[id]; ok {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

// UserRolesByID is UserRoles keyed by user ID.
func (d *Dispatcher) UserRolesByID(userID string) ([]*discordgo.Role, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id was empty: %w", ErrInvalidArgument)
	}
	return d.UserRoles(&discordgo.User{ID: userID})
}

// EditUserRoles replaces the user's entire role set. Calling with no roles
// clears every role off the member.
func (d *Dispatcher) EditUserRoles(user *discordgo.User, roles ...*discordgo.Role) error {
	if user == nil {
		return fmt.Errorf("user was nil: %w", ErrInvalidArgument)
	}
	m := d.member(user.ID)
	if m == nil {
		return nil
	}

	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		if r != nil {
			ids = append(ids, r.ID)
		}
	}
	if _, err := d.s.GuildMemberEdit(d.guildID, user.ID, &discordgo.GuildMemberParams{Roles: &ids}); err != nil {
		d.log.Error().Err(err).Str("user", user.ID).Msg("Failed to replace member roles")
	}
	return nil
}

// AddRole puts a single role on a user.
func (d *Dispatcher) AddRole(role *discordgo.Role, user *discordgo.User) error {
	if role == nil || user == nil {
		return fmt.Errorf("user or role was nil: %w", ErrInvalidArgument)
	}
	m := d.member(user.ID)
	if m == nil {
		return nil
	}
	if err := d.s.GuildMemberRoleAdd(d.guildID, user.ID, role.ID); err != nil {
		d.log.Error().Err(err).Str("user", user.ID).Str("role", role.Name).Msg("Failed to add role")
	}
	return nil
}

// AddRoleNamed resolves a role and a user by name and puts the role on them.
func (d *Dispatcher) AddRoleNamed(roleName, userName string) error {
	role, user, err := d.roleAndUser(roleName, userName)
	if err != nil {
		return err
	}
	return d.AddRole(role, user)
}

// RemoveRole takes a single role off a user.
func (d *Dispatcher) RemoveRole(role *discordgo.Role, user *discordgo.User) error {
	if role == nil || user == nil {
		return fmt.Errorf("user or role was nil: %w", ErrInvalidArgument)
	}
	m := d.member(user.ID)
	if m == nil {
		return nil
	}
	if err := d.s.GuildMemberRoleRemove(d.guildID, user.ID, role.ID); err != nil {
		d.log.Error().Err(err).Str("user", user.ID).Str("role", role.Name).Msg("Failed to remove role")
	}
	return nil
}

// RemoveRoleNamed resolves a role and a user by name and removes the role.
func (d *Dispatcher) RemoveRoleNamed(roleName, userName string) error {
	role, user, err := d.roleAndUser(roleName, userName)
	if err != nil {
		return err
	}
	return d.RemoveRole(role, user)
}

// CreateRole creates a new role with the given name and default settings.
func (d *Dispatcher) CreateRole(name string) error {
	if name == "" {
		return fmt.Errorf("role name was empty: %w", ErrInvalidArgument)
	}
	if _, err := d.s.GuildRoleCreate(d.guildID, &discordgo.RoleParams{Name: name}); err != nil {
		d.log.Error().Err(err).Str("role", name).Msg("Failed to create role")
	}
	return nil
}

// DeleteRole deletes a role from the guild.
func (d *Dispatcher) DeleteRole(role *discordgo.Role) error {
	if role == nil {
		return fmt.Errorf("role was nil: %w", ErrInvalidArgument)
	}
	if err := d.s.GuildRoleDelete(d.guildID, role.ID); err != nil {
		d.log.Error().Err(err).Str("role", role.Name).Msg("Failed to delete role")
	}
	return nil
}

// DeleteRoleNamed resolves a role by name and deletes it.
func (d *Dispatcher) DeleteRoleNamed(name string) error {
	role, err := d.resolver.Role(name)
	if err != nil {
		return err
	}
	return d.DeleteRole(role)
}

// IsAdministrator reports whether a user holds administrator rights in the
// guild, either as owner or through any role carrying the administrator
// permission. A user who cannot be resolved as a member is simply not an
// administrator.
func (d *Dispatcher) IsAdministrator(user *discordgo.User) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("user was nil: %w", ErrInvalidArgument)
	}
	m := d.member(user.ID)
	if m == nil {
		return false, nil
	}

	guild, err := d.s.Guild(d.guildID)
	if err == nil && guild != nil && guild.OwnerID == user.ID {
		return true, nil
	}

	all, err := d.resolver.Roles()
	if err != nil {
		return false, err
	}
	byID := make(map[string]*discordgo.Role, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}
	for _, id := range m.Roles {
		if r, ok := byID[id]; ok && r.Permissions&discordgo.PermissionAdministrator != 0 {
			return true, nil
		}
	}
	return false, nil
}

// IsAdministratorNamed resolves a member by display name and checks their
// administrator rights.
func (d *Dispatcher) IsAdministratorNamed(userName string) (bool, error) {
	member, err := d.resolver.User(userName)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, fmt.Errorf("user %q not found: %w", userName, ErrInvalidArgument)
	}
	return d.IsAdministrator(member.User)
}

// member fetches the guild member for a user ID, returning nil when the
// member cannot be resolved.
func (d *Dispatcher) member(userID string) *discordgo.Member {
	m, err := d.s.GuildMember(d.guildID, userID)
	if err != nil {
		d.log.Warn().Err(err).Str("user", userID).Msg("Member lookup failed")
		return nil
	}
	return m
}

func (d *Dispatcher) roleAndUser(roleName, userName string) (*discordgo.Role, *discordgo.User, error) {
	role, err := d.resolver.Role(roleName)
	if err != nil {
		return nil, nil, err
	}
	member, err := d.resolver.User(userName)
	if err != nil {
		return nil, nil, err
	}
	var user *discordgo.User
	if member != nil {
		user = member.User
	}
	return role, user, nil
}
