// Package discord connects the bot to the gateway and reacts to its events.
package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/pending"
	"github.com/baptiste0928/raidprotect-sub000/internal/state"
)

type Config struct {
	captchaExpiry time.Duration
}

func NewConfig(captchaExpiry time.Duration) *Config {
	return &Config{captchaExpiry: captchaExpiry}
}

type Discord struct {
	ctx     context.Context
	logger  *zap.SugaredLogger
	session *discordgo.Session
	config  *Config
	state   *state.ClusterState
	watcher *pending.Watcher
}

func NewDiscord(ctx context.Context, log *zap.SugaredLogger, token string, config *Config, cluster *state.ClusterState) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	cluster.SetTransport(cache.NewRESTTransport(s))
	return &Discord{
		ctx:     ctx,
		logger:  log,
		session: s,
		config:  config,
		state:   cluster,
		watcher: pending.NewWatcher(cluster.Pending(), cluster.CacheHTTP, log),
	}, nil
}

func (d *Discord) addHandlers() {
	d.session.AddHandlerOnce(d.onReady)
	d.session.AddHandler(d.onGuildCreate)
	d.session.AddHandler(d.onGuildUpdate)
	d.session.AddHandler(d.onGuildDelete)
	d.session.AddHandler(d.onChannelCreate)
	d.session.AddHandler(d.onChannelUpdate)
	d.session.AddHandler(d.onChannelDelete)
	d.session.AddHandler(d.onThreadCreate)
	d.session.AddHandler(d.onThreadUpdate)
	d.session.AddHandler(d.onThreadDelete)
	d.session.AddHandler(d.onGuildRoleCreate)
	d.session.AddHandler(d.onGuildRoleUpdate)
	d.session.AddHandler(d.onGuildRoleDelete)
	d.session.AddHandler(d.onGuildMemberAdd)
	d.session.AddHandler(d.onGuildMemberUpdate)
}

func (d *Discord) Connect() error {
	d.addHandlers()
	d.session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return d.session.Open()
}

func (d *Discord) Close() error {
	return d.session.Close()
}
