package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/pending"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

const captchaKickReason = "Captcha expired"

// captchaJoinWindow bounds how long after the join a member is still
// challenged. Gateway reconnects replay member snapshots of long-standing
// members, which must not be challenged again.
const captchaJoinWindow = 5 * time.Second

// maybeStartCaptcha challenges a newly joined member when the guild has the
// captcha enabled: the unverified role is assigned, a pending captcha is
// stored and its expiry compensator armed.
func (d *Discord) maybeStartCaptcha(member *discordgo.Member) {
	if member.User == nil || member.User.Bot {
		return
	}
	if member.JoinedAt.IsZero() || time.Since(member.JoinedAt) > captchaJoinWindow {
		return
	}

	guildID, err := util.ParseSnowflake(member.GuildID)
	if err != nil {
		d.logger.Errorw("Failed to parse guild id.", "guild", member.GuildID, "error", err)
		return
	}
	memberID, err := util.ParseSnowflake(member.User.ID)
	if err != nil {
		d.logger.Errorw("Failed to parse member id.", "member", member.User.ID, "error", err)
		return
	}

	config, err := d.state.Store().GetGuildOrCreate(d.ctx, guildID)
	if err != nil {
		d.logger.Errorw("Failed to load guild configuration.", "guild", guildID, "error", err)
		return
	}
	if !config.Captcha.Enabled || config.Captcha.Role == 0 {
		return
	}

	roleAdd, err := d.state.CacheHTTP(guildID).AddGuildMemberRole(d.ctx, memberID, config.Captcha.Role)
	if err != nil {
		d.logger.Warnw("Skipping captcha for new member.",
			"guild", guildID, "member", memberID, "error", err)
		return
	}
	if err := roleAdd.Exec(); err != nil {
		d.logger.Errorw("Failed to assign unverified role.",
			"guild", guildID, "member", memberID, "error", err)
		return
	}

	captcha := &pending.PendingCaptcha{
		GuildID:   guildID,
		MemberID:  memberID,
		Code:      pending.NewCode(),
		ExpiresAt: time.Now().Add(d.config.captchaExpiry),
	}
	if err := d.state.Pending().InsertCaptcha(d.ctx, captcha); err != nil {
		d.logger.Errorw("Failed to store pending captcha.",
			"guild", guildID, "member", memberID, "error", err)
		return
	}

	d.watcher.Schedule(d.ctx, captcha, captchaKickReason)
}
