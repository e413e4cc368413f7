package discord

import (
	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

// maybeReconfigureCaptcha re-asserts the captcha channel layout of a guild:
// every channel except the verification channel must be hidden from the
// unverified role. Runs as a background task since a large guild means one
// request per channel.
func (d *Discord) maybeReconfigureCaptcha(rawGuildID string) {
	guildID, err := util.ParseSnowflake(rawGuildID)
	if err != nil {
		return
	}

	config, err := d.state.Store().GetGuildOrCreate(d.ctx, guildID)
	if err != nil {
		d.logger.Errorw("Failed to load guild configuration.", "guild", guildID, "error", err)
		return
	}
	if !config.Captcha.Enabled || config.Captcha.Role == 0 || config.Captcha.Channel == 0 {
		return
	}

	go d.reconfigureCaptchaChannels(guildID, config.Captcha.Role, config.Captcha.Channel)
}

func (d *Discord) reconfigureCaptchaChannels(guildID, unverifiedRole, captchaChannel model.Snowflake) {
	channels, err := d.state.Cache().GuildChannels(d.ctx, guildID)
	if err != nil {
		d.logger.Errorw("Failed to list guild channels.", "guild", guildID, "error", err)
		return
	}

	for _, channel := range channels {
		if d.ctx.Err() != nil {
			return
		}
		if channel.ID == captchaChannel || channel.IsThread() {
			continue
		}
		if deniesView(channel.PermissionOverwrites, unverifiedRole) {
			continue
		}

		update, err := d.state.CacheHTTP(guildID).UpdateChannelPermission(d.ctx, channel.ID)
		if err != nil {
			d.logger.Warnw("Skipping captcha channel reconfiguration.",
				"guild", guildID, "error", err)
			return
		}
		err = update.Role(unverifiedRole).Deny(model.PermissionViewChannel).Exec()
		if err != nil {
			d.logger.Errorw("Failed to hide channel from unverified role.",
				"guild", guildID, "channel", channel.ID, "error", err)
		}
	}
}

// deniesView reports whether the overwrites already hide the channel from
// the role.
func deniesView(overwrites []model.PermissionOverwrite, roleID model.Snowflake) bool {
	for _, overwrite := range overwrites {
		if overwrite.Kind != model.OverwriteRole || overwrite.TargetID != roleID {
			continue
		}
		return overwrite.Deny.Contains(model.PermissionViewChannel)
	}
	return false
}
