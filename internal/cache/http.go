package cache

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

// Transport performs the outbound Discord REST calls issued by CacheHTTP.
// It is an interface so tests can record calls without a live session.
type Transport interface {
	CreateMessage(channelID model.Snowflake, data *discordgo.MessageSend) (*discordgo.Message, error)
	CreateGuildChannel(guildID model.Snowflake, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	UpdateChannelPermission(channelID, targetID model.Snowflake, kind discordgo.PermissionOverwriteType, allow, deny model.Permissions) error
	RemoveGuildMember(guildID, userID model.Snowflake, reason string) error
	AddGuildMemberRole(guildID, userID, roleID model.Snowflake) error
	UpdateGuildMember(guildID, userID model.Snowflake, data *discordgo.GuildMemberParams) (*discordgo.Member, error)
}

// RESTTransport implements Transport over a discordgo session.
type RESTTransport struct {
	session *discordgo.Session
}

// NewRESTTransport wraps a discordgo session.
func NewRESTTransport(session *discordgo.Session) *RESTTransport {
	return &RESTTransport{session: session}
}

func (t *RESTTransport) CreateMessage(channelID model.Snowflake, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return t.session.ChannelMessageSendComplex(util.FormatSnowflake(channelID), data)
}

func (t *RESTTransport) CreateGuildChannel(guildID model.Snowflake, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return t.session.GuildChannelCreateComplex(util.FormatSnowflake(guildID), data)
}

func (t *RESTTransport) UpdateChannelPermission(channelID, targetID model.Snowflake, kind discordgo.PermissionOverwriteType, allow, deny model.Permissions) error {
	return t.session.ChannelPermissionSet(
		util.FormatSnowflake(channelID),
		util.FormatSnowflake(targetID),
		kind,
		int64(allow),
		int64(deny),
	)
}

func (t *RESTTransport) RemoveGuildMember(guildID, userID model.Snowflake, reason string) error {
	return t.session.GuildMemberDeleteWithReason(
		util.FormatSnowflake(guildID),
		util.FormatSnowflake(userID),
		reason,
	)
}

func (t *RESTTransport) AddGuildMemberRole(guildID, userID, roleID model.Snowflake) error {
	return t.session.GuildMemberRoleAdd(
		util.FormatSnowflake(guildID),
		util.FormatSnowflake(userID),
		util.FormatSnowflake(roleID),
	)
}

func (t *RESTTransport) UpdateGuildMember(guildID, userID model.Snowflake, data *discordgo.GuildMemberParams) (*discordgo.Member, error) {
	return t.session.GuildMemberEdit(
		util.FormatSnowflake(guildID),
		util.FormatSnowflake(userID),
		data,
	)
}

// CacheHTTP gates outbound requests for one guild on the bot's cached
// permissions. Each method verifies the permissions the request needs before
// returning a builder; a failed check returns *MissingPermissionError
// carrying the permissions the bot lacks, and no request is sent.
type CacheHTTP struct {
	client    *Client
	transport Transport
	guildID   model.Snowflake
}

// HTTP creates a permission-checked request client for a guild.
func (c *Client) HTTP(transport Transport, guildID model.Snowflake) *CacheHTTP {
	return &CacheHTTP{client: c, transport: transport, guildID: guildID}
}

// currentMember resolves the bot's permission context in the guild.
func (h *CacheHTTP) currentMember(ctx context.Context) (*MemberPermissions, error) {
	permissions, err := h.client.Permissions(ctx, h.guildID)
	if err != nil {
		return nil, err
	}
	return permissions.CurrentMember(ctx)
}

func checkPermissions(held, required model.Permissions) error {
	if missing := held.Missing(required); missing != 0 {
		return &MissingPermissionError{Required: missing}
	}
	return nil
}

// CreateMessage checks that the bot can send a rich message in the channel
// and returns the request builder.
//
// Embeds and external emojis are part of every check because the bot's
// messages always carry them; failing upfront beats a message rendered
// without its embed.
func (h *CacheHTTP) CreateMessage(ctx context.Context, channelID model.Snowflake) (*MessageRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	permissions, kind, err := member.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	required := model.PermissionViewChannel | model.PermissionEmbedLinks | model.PermissionUseExternalEmojis
	if model.IsThread(kind) {
		required |= model.PermissionSendMessagesInThreads
	} else {
		required |= model.PermissionSendMessages
	}

	if err := checkPermissions(permissions, required); err != nil {
		return nil, err
	}

	return &MessageRequest{
		transport: h.transport,
		channelID: channelID,
		data:      &discordgo.MessageSend{},
	}, nil
}

// CreateGuildChannel checks the MANAGE_CHANNELS permission and returns the
// request builder.
func (h *CacheHTTP) CreateGuildChannel(ctx context.Context, name string, kind discordgo.ChannelType) (*ChannelCreateRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(member.Guild(), model.PermissionManageChannels); err != nil {
		return nil, err
	}

	return &ChannelCreateRequest{
		transport: h.transport,
		guildID:   h.guildID,
		data:      discordgo.GuildChannelCreateData{Name: name, Type: kind},
	}, nil
}

// UpdateChannelPermission checks the MANAGE_ROLES permission and returns the
// request builder for a single overwrite.
func (h *CacheHTTP) UpdateChannelPermission(ctx context.Context, channelID model.Snowflake) (*PermissionOverwriteRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(member.Guild(), model.PermissionManageRoles); err != nil {
		return nil, err
	}

	return &PermissionOverwriteRequest{
		transport: h.transport,
		channelID: channelID,
	}, nil
}

// RemoveGuildMember checks the KICK_MEMBERS permission and returns the
// request builder.
func (h *CacheHTTP) RemoveGuildMember(ctx context.Context, userID model.Snowflake) (*KickRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(member.Guild(), model.PermissionKickMembers); err != nil {
		return nil, err
	}

	return &KickRequest{
		transport: h.transport,
		guildID:   h.guildID,
		userID:    userID,
	}, nil
}

// AddGuildMemberRole checks the MANAGE_ROLES permission and that the role
// sits strictly below the bot's highest role, then returns the request
// builder. A role at or above the bot's highest role fails with
// ErrRoleBelowBot since Discord would reject the request.
func (h *CacheHTTP) AddGuildMemberRole(ctx context.Context, userID, roleID model.Snowflake) (*RoleAddRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(member.Guild(), model.PermissionManageRoles); err != nil {
		return nil, err
	}

	role, err := Get[model.Role](ctx, h.client, model.RoleKey(roleID))
	if err != nil {
		return nil, err
	}
	if role == nil || model.CompareRoles(role, member.HighestRole()) >= 0 {
		return nil, ErrRoleBelowBot
	}

	return &RoleAddRequest{
		transport: h.transport,
		guildID:   h.guildID,
		userID:    userID,
		roleID:    roleID,
	}, nil
}

// UpdateGuildMember checks the MANAGE_ROLES permission and that every role
// being assigned sits strictly below the bot's highest role, then returns
// the request builder.
func (h *CacheHTTP) UpdateGuildMember(ctx context.Context, userID model.Snowflake, roleIDs []model.Snowflake) (*MemberUpdateRequest, error) {
	member, err := h.currentMember(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkPermissions(member.Guild(), model.PermissionManageRoles); err != nil {
		return nil, err
	}

	highest := member.HighestRole()
	roles := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, err := Get[model.Role](ctx, h.client, model.RoleKey(roleID))
		if err != nil {
			return nil, err
		}
		if role == nil || model.CompareRoles(role, highest) >= 0 {
			return nil, ErrRoleBelowBot
		}
		roles = append(roles, util.FormatSnowflake(roleID))
	}

	return &MemberUpdateRequest{
		transport: h.transport,
		guildID:   h.guildID,
		userID:    userID,
		data:      &discordgo.GuildMemberParams{Roles: &roles},
	}, nil
}

// MessageRequest builds and sends one channel message.
type MessageRequest struct {
	transport Transport
	channelID model.Snowflake
	data      *discordgo.MessageSend
}

// Content sets the text content of the message.
func (r *MessageRequest) Content(content string) *MessageRequest {
	r.data.Content = content
	return r
}

// Embeds sets the embeds of the message.
func (r *MessageRequest) Embeds(embeds ...*discordgo.MessageEmbed) *MessageRequest {
	r.data.Embeds = embeds
	return r
}

// Components sets the interactive components of the message.
func (r *MessageRequest) Components(components ...discordgo.MessageComponent) *MessageRequest {
	r.data.Components = components
	return r
}

// Exec sends the message.
func (r *MessageRequest) Exec() (*discordgo.Message, error) {
	return r.transport.CreateMessage(r.channelID, r.data)
}

// ChannelCreateRequest builds and sends one guild channel creation.
type ChannelCreateRequest struct {
	transport Transport
	guildID   model.Snowflake
	data      discordgo.GuildChannelCreateData
}

// Topic sets the channel topic.
func (r *ChannelCreateRequest) Topic(topic string) *ChannelCreateRequest {
	r.data.Topic = topic
	return r
}

// Parent sets the parent category of the channel.
func (r *ChannelCreateRequest) Parent(parentID model.Snowflake) *ChannelCreateRequest {
	r.data.ParentID = util.FormatSnowflake(parentID)
	return r
}

// PermissionOverwrites sets the initial overwrites of the channel.
func (r *ChannelCreateRequest) PermissionOverwrites(overwrites []*discordgo.PermissionOverwrite) *ChannelCreateRequest {
	r.data.PermissionOverwrites = overwrites
	return r
}

// Exec creates the channel.
func (r *ChannelCreateRequest) Exec() (*discordgo.Channel, error) {
	return r.transport.CreateGuildChannel(r.guildID, r.data)
}

// PermissionOverwriteRequest builds and sends one channel permission
// overwrite update.
type PermissionOverwriteRequest struct {
	transport Transport
	channelID model.Snowflake
	targetID  model.Snowflake
	kind      discordgo.PermissionOverwriteType
	allow     model.Permissions
	deny      model.Permissions
}

// Role targets the overwrite at a role.
func (r *PermissionOverwriteRequest) Role(roleID model.Snowflake) *PermissionOverwriteRequest {
	r.targetID = roleID
	r.kind = discordgo.PermissionOverwriteTypeRole
	return r
}

// Member targets the overwrite at a member.
func (r *PermissionOverwriteRequest) Member(userID model.Snowflake) *PermissionOverwriteRequest {
	r.targetID = userID
	r.kind = discordgo.PermissionOverwriteTypeMember
	return r
}

// Allow sets the allowed permissions of the overwrite.
func (r *PermissionOverwriteRequest) Allow(allow model.Permissions) *PermissionOverwriteRequest {
	r.allow = allow
	return r
}

// Deny sets the denied permissions of the overwrite.
func (r *PermissionOverwriteRequest) Deny(deny model.Permissions) *PermissionOverwriteRequest {
	r.deny = deny
	return r
}

// Exec applies the overwrite.
func (r *PermissionOverwriteRequest) Exec() error {
	return r.transport.UpdateChannelPermission(r.channelID, r.targetID, r.kind, r.allow, r.deny)
}

// KickRequest builds and sends one member removal.
type KickRequest struct {
	transport Transport
	guildID   model.Snowflake
	userID    model.Snowflake
	reason    string
}

// Reason sets the audit log reason of the kick.
func (r *KickRequest) Reason(reason string) *KickRequest {
	r.reason = reason
	return r
}

// Exec removes the member from the guild.
func (r *KickRequest) Exec() error {
	return r.transport.RemoveGuildMember(r.guildID, r.userID, r.reason)
}

// RoleAddRequest builds and sends one member role assignment.
type RoleAddRequest struct {
	transport Transport
	guildID   model.Snowflake
	userID    model.Snowflake
	roleID    model.Snowflake
}

// Exec assigns the role to the member.
func (r *RoleAddRequest) Exec() error {
	return r.transport.AddGuildMemberRole(r.guildID, r.userID, r.roleID)
}

// MemberUpdateRequest builds and sends one member update.
type MemberUpdateRequest struct {
	transport Transport
	guildID   model.Snowflake
	userID    model.Snowflake
	data      *discordgo.GuildMemberParams
}

// Nick sets the nickname of the member.
func (r *MemberUpdateRequest) Nick(nick string) *MemberUpdateRequest {
	r.data.Nick = nick
	return r
}

// Exec applies the update.
func (r *MemberUpdateRequest) Exec() (*discordgo.Member, error) {
	return r.transport.UpdateGuildMember(r.guildID, r.userID, r.data)
}
