package cache

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

// ProcessEvent updates the cache from an incoming gateway event.
//
// Each event maps to a single pipeline submitted once, so the mutations of
// one event are applied in order on a single connection. Failures are logged
// with the event kind and never propagate: the event stream must keep
// flowing regardless of cache errors, and no retry is performed at this
// layer.
func (c *Client) ProcessEvent(ctx context.Context, botID model.Snowflake, event any) {
	var (
		kind string
		err  error
	)

	switch e := event.(type) {
	case *discordgo.GuildCreate:
		kind = "GuildCreate"
		err = c.processGuildCreate(ctx, botID, e.Guild)
	case *discordgo.GuildDelete:
		if e.Unavailable {
			kind = "UnavailableGuild"
			err = c.processGuildUnavailable(ctx, e.ID)
		} else {
			kind = "GuildDelete"
			err = c.processGuildDelete(ctx, e.ID)
		}
	case *discordgo.GuildUpdate:
		kind = "GuildUpdate"
		err = c.processGuildUpdate(ctx, e.Guild)
	case *discordgo.ChannelCreate:
		kind = "ChannelCreate"
		err = c.processChannelCreate(ctx, e.Channel)
	case *discordgo.ChannelUpdate:
		kind = "ChannelUpdate"
		err = c.processChannelUpdate(ctx, e.Channel)
	case *discordgo.ChannelDelete:
		kind = "ChannelDelete"
		err = c.processChannelDelete(ctx, e.Channel)
	case *discordgo.ThreadCreate:
		kind = "ThreadCreate"
		err = c.processChannelCreate(ctx, e.Channel)
	case *discordgo.ThreadUpdate:
		kind = "ThreadUpdate"
		err = c.processChannelUpdate(ctx, e.Channel)
	case *discordgo.ThreadDelete:
		kind = "ThreadDelete"
		err = c.processChannelDelete(ctx, e.Channel)
	case *discordgo.GuildRoleCreate:
		kind = "RoleCreate"
		err = c.processRoleCreate(ctx, e.GuildID, e.Role)
	case *discordgo.GuildRoleUpdate:
		kind = "RoleUpdate"
		err = c.processRoleUpdate(ctx, e.GuildID, e.Role)
	case *discordgo.GuildRoleDelete:
		kind = "RoleDelete"
		err = c.processRoleDelete(ctx, e.GuildID, e.RoleID)
	case *discordgo.GuildMemberAdd:
		kind = "MemberAdd"
		err = c.processMember(ctx, botID, e.Member)
	case *discordgo.GuildMemberUpdate:
		kind = "MemberUpdate"
		err = c.processMember(ctx, botID, e.Member)
	default:
		c.log.Debugw("Ignoring unprocessed event type.", "event", event)
		return
	}

	if err != nil {
		c.log.Errorw("Failed to update cache from event.", "event", kind, "error", err)
	}
}

func (c *Client) processGuildCreate(ctx context.Context, botID model.Snowflake, guild *discordgo.Guild) error {
	pipe := NewPipeline()
	if _, err := c.cacheGuild(pipe, botID, guild); err != nil {
		return err
	}
	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processGuildDelete(ctx context.Context, id string) error {
	guildID, err := util.ParseSnowflake(id)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil || guild == nil {
		return err
	}

	// Remove the guild and all of its channels and roles.
	pipe := NewPipeline()
	pipe.Del(guild.Key())
	for _, channel := range guild.Channels.Values() {
		pipe.Del(model.ChannelKey(channel))
	}
	for _, role := range guild.Roles.Values() {
		pipe.Del(model.RoleKey(role))
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processGuildUnavailable(ctx context.Context, id string) error {
	guildID, err := util.ParseSnowflake(id)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil || guild == nil {
		return err
	}

	// The guild entry itself is kept, flagged unavailable, while dependent
	// channels and roles are evicted.
	guild.Unavailable = true

	pipe := NewPipeline()
	if err := pipe.SetModel(guild); err != nil {
		return err
	}
	for _, channel := range guild.Channels.Values() {
		pipe.Del(model.ChannelKey(channel))
	}
	for _, role := range guild.Roles.Values() {
		pipe.Del(model.RoleKey(role))
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processGuildUpdate(ctx context.Context, updated *discordgo.Guild) error {
	guildID, err := util.ParseSnowflake(updated.ID)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil || guild == nil {
		return err
	}

	guild.Name = updated.Name
	guild.Icon = updated.Icon
	guild.OwnerID, err = util.ParseSnowflake(updated.OwnerID)
	if err != nil {
		return err
	}

	return c.Set(ctx, guild)
}

func (c *Client) processChannelCreate(ctx context.Context, channel *discordgo.Channel) error {
	if !model.IsCached(channel.Type) || channel.GuildID == "" {
		c.log.Debugw("Dropping channel that cannot be cached.", "channel", channel.ID)
		return nil
	}

	guildID, err := util.ParseSnowflake(channel.GuildID)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil || guild == nil {
		return err
	}

	pipe := NewPipeline()
	cached, err := cacheChannel(pipe, channel)
	if err != nil {
		c.log.Errorw("Failed to cache guild channel.", "channel", channel.ID, "error", err)
	} else {
		guild.Channels.Add(cached.ID)
		if err := pipe.SetModel(guild); err != nil {
			return err
		}
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processChannelUpdate(ctx context.Context, channel *discordgo.Channel) error {
	if channel.GuildID == "" {
		return nil // Ensure the channel is in a guild.
	}

	pipe := NewPipeline()
	if _, err := cacheChannel(pipe, channel); err != nil {
		c.log.Errorw("Failed to cache guild channel.", "channel", channel.ID, "error", err)
		return nil
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processChannelDelete(ctx context.Context, channel *discordgo.Channel) error {
	if channel.GuildID == "" {
		return nil
	}

	channelID, err := util.ParseSnowflake(channel.ID)
	if err != nil {
		return err
	}
	guildID, err := util.ParseSnowflake(channel.GuildID)
	if err != nil {
		return err
	}

	pipe := NewPipeline()

	// Remove the channel from the guild's channel set.
	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return err
	}
	if guild != nil {
		guild.Channels.Remove(channelID)
		if err := pipe.SetModel(guild); err != nil {
			return err
		}
	}

	pipe.Del(model.ChannelKey(channelID))

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processRoleCreate(ctx context.Context, rawGuildID string, role *discordgo.Role) error {
	guildID, err := util.ParseSnowflake(rawGuildID)
	if err != nil {
		return err
	}

	pipe := NewPipeline()
	cached, err := cacheRole(pipe, guildID, role)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return err
	}
	if guild != nil {
		guild.Roles.Add(cached.ID)
		if err := pipe.SetModel(guild); err != nil {
			return err
		}
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processRoleUpdate(ctx context.Context, rawGuildID string, role *discordgo.Role) error {
	guildID, err := util.ParseSnowflake(rawGuildID)
	if err != nil {
		return err
	}

	pipe := NewPipeline()
	if _, err := cacheRole(pipe, guildID, role); err != nil {
		return err
	}

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processRoleDelete(ctx context.Context, rawGuildID, rawRoleID string) error {
	guildID, err := util.ParseSnowflake(rawGuildID)
	if err != nil {
		return err
	}
	roleID, err := util.ParseSnowflake(rawRoleID)
	if err != nil {
		return err
	}

	pipe := NewPipeline()

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return err
	}
	if guild != nil {
		guild.Roles.Remove(roleID)
		if err := pipe.SetModel(guild); err != nil {
			return err
		}
	}

	pipe.Del(model.RoleKey(roleID))

	return c.kv.Pipelined(ctx, pipe)
}

func (c *Client) processMember(ctx context.Context, botID model.Snowflake, member *discordgo.Member) error {
	// Only the bot's own membership is cached.
	if member.User == nil {
		return nil
	}
	memberID, err := util.ParseSnowflake(member.User.ID)
	if err != nil {
		return err
	}
	if memberID != botID {
		return nil
	}

	guildID, err := util.ParseSnowflake(member.GuildID)
	if err != nil {
		return err
	}

	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil || guild == nil {
		return err
	}

	guild.CurrentMember = convertCurrentMember(memberID, member)

	return c.Set(ctx, guild)
}
