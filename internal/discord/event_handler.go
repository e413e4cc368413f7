package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

func (d *Discord) onReady(_ *discordgo.Session, e *discordgo.Ready) {
	id, err := util.ParseSnowflake(e.User.ID)
	if err != nil {
		d.logger.Errorw("Failed to parse bot user id.", "id", e.User.ID, "error", err)
		return
	}
	d.state.SetCurrentUser(id)
	d.logger.Infof("Logged in Discord API as %s.", e.User)
}

// processEvent forwards a gateway event to the cache reducer.
func (d *Discord) processEvent(event any) {
	d.state.Cache().ProcessEvent(d.ctx, d.state.CurrentUser(), event)
}

func (d *Discord) onGuildCreate(_ *discordgo.Session, e *discordgo.GuildCreate) {
	d.processEvent(e)
	d.maybeReconfigureCaptcha(e.ID)
}

func (d *Discord) onGuildUpdate(_ *discordgo.Session, e *discordgo.GuildUpdate) {
	d.processEvent(e)
}

func (d *Discord) onGuildDelete(_ *discordgo.Session, e *discordgo.GuildDelete) {
	d.processEvent(e)
}

func (d *Discord) onChannelCreate(_ *discordgo.Session, e *discordgo.ChannelCreate) {
	d.processEvent(e)
}

func (d *Discord) onChannelUpdate(_ *discordgo.Session, e *discordgo.ChannelUpdate) {
	d.processEvent(e)
}

func (d *Discord) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	d.processEvent(e)
}

func (d *Discord) onThreadCreate(_ *discordgo.Session, e *discordgo.ThreadCreate) {
	d.processEvent(e)
}

func (d *Discord) onThreadUpdate(_ *discordgo.Session, e *discordgo.ThreadUpdate) {
	d.processEvent(e)
}

func (d *Discord) onThreadDelete(_ *discordgo.Session, e *discordgo.ThreadDelete) {
	d.processEvent(e)
}

func (d *Discord) onGuildRoleCreate(_ *discordgo.Session, e *discordgo.GuildRoleCreate) {
	d.processEvent(e)
}

func (d *Discord) onGuildRoleUpdate(_ *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	d.processEvent(e)
}

func (d *Discord) onGuildRoleDelete(_ *discordgo.Session, e *discordgo.GuildRoleDelete) {
	d.processEvent(e)
}

func (d *Discord) onGuildMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	d.processEvent(e)
	d.maybeStartCaptcha(e.Member)
}

func (d *Discord) onGuildMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	d.processEvent(e)
}
