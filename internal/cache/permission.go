package cache

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

// GuildPermissions computes permissions of members of a single guild from
// cached state.
type GuildPermissions struct {
	client *Client
	guild  *model.Guild
}

// Permissions initializes a permission calculator for a guild. It fails
// with ErrGuildMissing if the guild is not cached.
func (c *Client) Permissions(ctx context.Context, guildID model.Snowflake) (*GuildPermissions, error) {
	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, ErrGuildMissing
	}

	return &GuildPermissions{client: c, guild: guild}, nil
}

// Member resolves the permission context of a guild member from its role
// IDs.
func (p *GuildPermissions) Member(ctx context.Context, memberID model.Snowflake, roleIDs []model.Snowflake) (*MemberPermissions, error) {
	everyone, roles, err := p.queryRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	return &MemberPermissions{
		client:   p.client,
		guildID:  p.guild.ID,
		memberID: memberID,
		isOwner:  memberID == p.guild.OwnerID,
		everyone: everyone,
		roles:    roles,
	}, nil
}

// CurrentMember resolves the permission context of the bot itself. It fails
// with ErrCurrentMemberMissing when the bot membership has not been cached
// for the guild.
func (p *GuildPermissions) CurrentMember(ctx context.Context) (*MemberPermissions, error) {
	member := p.guild.CurrentMember
	if member == nil {
		return nil, ErrCurrentMemberMissing
	}

	return p.Member(ctx, member.ID, member.Roles)
}

// queryRoles fetches the everyone role plus the given named roles in a
// single pipeline. Unknown named roles are dropped; a missing everyone role
// is an error since it must exist whenever the guild exists.
func (p *GuildPermissions) queryRoles(ctx context.Context, roleIDs []model.Snowflake) (*model.Role, []model.Role, error) {
	everyoneID := p.guild.ID

	pipe := NewPipeline()
	pipe.Get(model.RoleKey(everyoneID))
	for _, id := range roleIDs {
		pipe.Get(model.RoleKey(id))
	}

	if err := p.client.kv.Pipelined(ctx, pipe); err != nil {
		return nil, nil, err
	}

	var everyone *model.Role
	roles := make([]model.Role, 0, len(roleIDs))
	for _, buf := range pipe.Values() {
		if buf == nil {
			continue
		}
		var role model.Role
		if err := Decode(buf, &role); err != nil {
			p.client.log.Errorw("Skipping undecodable role record.", "guild", p.guild.ID, "error", err)
			continue
		}

		if role.ID == everyoneID {
			everyone = &role
		} else {
			roles = append(roles, role)
		}
	}

	if everyone == nil {
		return nil, nil, ErrEveryoneMissing
	}

	return everyone, roles, nil
}

// MemberPermissions is the resolved permission context of one member.
//
// It holds a snapshot of the member's roles: cache writes performed after
// resolution do not affect it.
type MemberPermissions struct {
	client   *Client
	guildID  model.Snowflake
	memberID model.Snowflake
	isOwner  bool
	everyone *model.Role
	roles    []model.Role
}

// IsOwner reports whether the member owns the guild.
func (m *MemberPermissions) IsOwner() bool { return m.isOwner }

// HighestRole returns the highest role of the member under the
// (position, id) role order, or the everyone role if the member has no named
// role.
func (m *MemberPermissions) HighestRole() *model.Role {
	if len(m.roles) == 0 {
		return m.everyone
	}

	highest := &m.roles[0]
	for i := range m.roles[1:] {
		role := &m.roles[i+1]
		if model.CompareRoles(role, highest) > 0 {
			highest = role
		}
	}
	return highest
}

// Guild computes the guild-level permissions of the member.
//
// Owners and administrators are granted all permissions. Otherwise the
// result is the everyone role's permissions OR-folded with each of the
// member's roles.
func (m *MemberPermissions) Guild() model.Permissions {
	if m.isOwner {
		return model.PermissionsAll
	}

	permissions := m.everyone.Permissions
	for i := range m.roles {
		permissions |= m.roles[i].Permissions
	}

	if permissions.Contains(model.PermissionAdministrator) {
		return model.PermissionsAll
	}

	return permissions
}

// Channel computes the permissions of the member in a channel, along with
// the channel's kind so callers can handle threads.
//
// Thread permissions are evaluated against the parent channel. Overwrites
// apply on top of the guild-level permissions, in order: the everyone
// overwrite, the combined overwrites of the member's roles, then the
// member-specific overwrite, each as deny-then-allow.
func (m *MemberPermissions) Channel(ctx context.Context, channelID model.Snowflake) (model.Permissions, discordgo.ChannelType, error) {
	channel, err := Get[model.Channel](ctx, m.client, model.ChannelKey(channelID))
	if err != nil {
		return 0, 0, err
	}
	if channel == nil {
		return 0, 0, ErrChannelMissing
	}

	kind := channel.Kind
	if channel.IsThread() {
		parent, err := Get[model.Channel](ctx, m.client, model.ChannelKey(channel.ParentID))
		if err != nil {
			return 0, 0, err
		}
		if parent == nil {
			return 0, 0, ErrParentMissing
		}
		channel = parent
	}

	permissions := m.Guild()
	if permissions == model.PermissionsAll {
		return permissions, kind, nil
	}

	memberRoles := model.NewIDSet()
	for i := range m.roles {
		memberRoles.Add(m.roles[i].ID)
	}

	var roleAllow, roleDeny, memberAllow, memberDeny model.Permissions
	for _, overwrite := range channel.PermissionOverwrites {
		switch {
		case overwrite.Kind == model.OverwriteRole && overwrite.TargetID == m.guildID:
			// Everyone overwrite, applied first.
			permissions &^= overwrite.Deny
			permissions |= overwrite.Allow
		case overwrite.Kind == model.OverwriteRole && memberRoles.Contains(overwrite.TargetID):
			roleDeny |= overwrite.Deny
			roleAllow |= overwrite.Allow
		case overwrite.Kind == model.OverwriteMember && overwrite.TargetID == m.memberID:
			memberDeny = overwrite.Deny
			memberAllow = overwrite.Allow
		}
	}

	permissions &^= roleDeny
	permissions |= roleAllow
	permissions &^= memberDeny
	permissions |= memberAllow

	return permissions, kind, nil
}
