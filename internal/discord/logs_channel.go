package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

const logsChannelName = "raidprotect-logs"

// GuildLogsChannel returns the logs channel of a guild, creating and
// persisting it when the guild has none. Concurrent calls for the same guild
// share a single creation.
func (d *Discord) GuildLogsChannel(guildID model.Snowflake) (model.Snowflake, error) {
	config, err := d.state.Store().GetGuildOrCreate(d.ctx, guildID)
	if err != nil {
		return 0, err
	}

	// Reuse the configured channel as long as it still exists.
	if config.LogsChan != 0 {
		channel, err := cache.Get[model.Channel](d.ctx, d.state.Cache(), model.ChannelKey(config.LogsChan))
		if err != nil {
			return 0, err
		}
		if channel != nil {
			return config.LogsChan, nil
		}
	}

	creation, owner := d.state.LogsChannels().Begin(guildID)
	if !owner {
		return creation.Wait(d.ctx)
	}

	channelID, err := d.createLogsChannel(guildID)
	if err == nil {
		config.LogsChan = channelID
		err = d.state.Store().UpdateGuild(d.ctx, config)
	}
	d.state.LogsChannels().Finish(guildID, creation, channelID, err)

	return channelID, err
}

// createLogsChannel creates the logs channel, hidden from everyone.
func (d *Discord) createLogsChannel(guildID model.Snowflake) (model.Snowflake, error) {
	create, err := d.state.CacheHTTP(guildID).CreateGuildChannel(d.ctx, logsChannelName, discordgo.ChannelTypeGuildText)
	if err != nil {
		return 0, err
	}

	channel, err := create.
		Topic("RaidProtect moderation logs").
		PermissionOverwrites([]*discordgo.PermissionOverwrite{{
			ID:   util.FormatSnowflake(guildID),
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: int64(model.PermissionViewChannel),
		}}).
		Exec()
	if err != nil {
		return 0, err
	}

	return util.ParseSnowflake(channel.ID)
}
