package cache

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

// This file converts gateway payloads into cache models and queues the
// corresponding SET commands on a pipeline. Conversion failures are reported
// to the caller, which logs them and skips the entity without aborting the
// rest of the pipeline.

var errNotCacheable = errors.New("channel type is not cached")

// cacheGuild queues SET commands for a guild and all of its cacheable
// channels and roles, and returns the guild model that was queued.
func (c *Client) cacheGuild(pipe *Pipeline, botID model.Snowflake, guild *discordgo.Guild) (*model.Guild, error) {
	guildID, err := util.ParseSnowflake(guild.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := util.ParseSnowflake(guild.OwnerID)
	if err != nil {
		return nil, err
	}

	channels := model.NewIDSet()
	for _, channel := range guild.Channels {
		if !model.IsCached(channel.Type) {
			continue
		}
		cached, err := cacheChannel(pipe, channel)
		if err != nil {
			c.log.Errorw("Failed to cache guild channel.", "channel", channel.ID, "error", err)
			continue
		}
		channels.Add(cached.ID)
	}

	roles := model.NewIDSet()
	for _, role := range guild.Roles {
		cached, err := cacheRole(pipe, guildID, role)
		if err != nil {
			c.log.Errorw("Failed to cache guild role.", "role", role.ID, "error", err)
			continue
		}
		roles.Add(cached.ID)
	}

	// Find the bot current member among the guild members snapshot. Members
	// with a malformed user id are skipped like any other bad entity.
	var currentMember *model.CurrentMember
	for _, member := range guild.Members {
		if member.User == nil {
			continue
		}
		memberID, err := util.ParseSnowflake(member.User.ID)
		if err != nil || memberID != botID {
			continue
		}
		currentMember = convertCurrentMember(memberID, member)
		break
	}

	cached := &model.Guild{
		ID:            guildID,
		Unavailable:   guild.Unavailable,
		Name:          guild.Name,
		Icon:          guild.Icon,
		OwnerID:       ownerID,
		CurrentMember: currentMember,
		Roles:         roles,
		Channels:      channels,
	}

	if err := pipe.SetModel(cached); err != nil {
		return nil, err
	}
	return cached, nil
}

// cacheChannel converts a gateway channel and queues its SET command.
//
// Required fields: guild id and name for every channel, parent id for
// threads. Threads never carry their own permission overwrites.
func cacheChannel(pipe *Pipeline, channel *discordgo.Channel) (*model.Channel, error) {
	cached, err := convertChannel(channel)
	if err != nil {
		return nil, err
	}
	if err := pipe.SetModel(cached); err != nil {
		return nil, err
	}
	return cached, nil
}

func convertChannel(channel *discordgo.Channel) (*model.Channel, error) {
	if !model.IsCached(channel.Type) {
		return nil, errNotCacheable
	}
	if channel.GuildID == "" {
		return nil, errors.New("missing guild id")
	}
	if channel.Name == "" {
		return nil, errors.New("missing channel name")
	}

	id, err := util.ParseSnowflake(channel.ID)
	if err != nil {
		return nil, err
	}
	guildID, err := util.ParseSnowflake(channel.GuildID)
	if err != nil {
		return nil, err
	}

	cached := &model.Channel{
		ID:               id,
		GuildID:          guildID,
		Kind:             channel.Type,
		Name:             channel.Name,
		RateLimitPerUser: channel.RateLimitPerUser,
	}

	if channel.ParentID != "" {
		cached.ParentID, err = util.ParseSnowflake(channel.ParentID)
		if err != nil {
			return nil, err
		}
	}

	if model.IsThread(channel.Type) {
		if cached.ParentID == 0 {
			return nil, errors.New("missing thread parent id")
		}
		// Thread permissions derive from the parent channel.
		return cached, nil
	}

	cached.Position = channel.Position
	cached.PermissionOverwrites, err = convertOverwrites(channel.PermissionOverwrites)
	if err != nil {
		return nil, err
	}

	return cached, nil
}

func convertOverwrites(overwrites []*discordgo.PermissionOverwrite) ([]model.PermissionOverwrite, error) {
	if len(overwrites) == 0 {
		return nil, nil
	}

	converted := make([]model.PermissionOverwrite, 0, len(overwrites))
	for _, overwrite := range overwrites {
		targetID, err := util.ParseSnowflake(overwrite.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid overwrite target: %w", err)
		}

		kind := model.OverwriteRole
		if overwrite.Type == discordgo.PermissionOverwriteTypeMember {
			kind = model.OverwriteMember
		}

		converted = append(converted, model.PermissionOverwrite{
			TargetID: targetID,
			Kind:     kind,
			Allow:    model.Permissions(overwrite.Allow),
			Deny:     model.Permissions(overwrite.Deny),
		})
	}

	return converted, nil
}

// cacheRole converts a gateway role and queues its SET command.
func cacheRole(pipe *Pipeline, guildID model.Snowflake, role *discordgo.Role) (*model.Role, error) {
	id, err := util.ParseSnowflake(role.ID)
	if err != nil {
		return nil, err
	}

	cached := &model.Role{
		ID:           id,
		GuildID:      guildID,
		Name:         role.Name,
		Color:        role.Color,
		Icon:         role.Icon,
		UnicodeEmoji: role.UnicodeEmoji,
		Position:     int64(role.Position),
		Permissions:  model.Permissions(role.Permissions),
		Managed:      role.Managed,
	}

	if err := pipe.SetModel(cached); err != nil {
		return nil, err
	}
	return cached, nil
}

func convertCurrentMember(id model.Snowflake, member *discordgo.Member) *model.CurrentMember {
	roles := make([]model.Snowflake, 0, len(member.Roles))
	for _, role := range member.Roles {
		roleID, err := util.ParseSnowflake(role)
		if err != nil {
			continue
		}
		roles = append(roles, roleID)
	}

	return &model.CurrentMember{
		ID:                         id,
		CommunicationDisabledUntil: member.CommunicationDisabledUntil,
		Roles:                      roles,
	}
}
