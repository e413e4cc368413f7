package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/config"
	"github.com/baptiste0928/raidprotect-sub000/internal/discord"
	"github.com/baptiste0928/raidprotect-sub000/internal/state"
	"github.com/baptiste0928/raidprotect-sub000/internal/storage"
)

type app struct {
	ctx    context.Context
	cancel context.CancelFunc

	logConf zap.Config
	logger  *zap.SugaredLogger

	config *config.Config

	storage *storage.Storage
	cache   *cache.Client
	state   *state.ClusterState
	discord *discord.Discord
}

func newApp(ctx context.Context, lcf zap.Config, log *zap.SugaredLogger) (*app, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &app{ctx: ctx, cancel: cancel, logConf: lcf, logger: log}
	var err error

	log.Debug("Loading configuration.")
	a.config, err = config.Read()
	if err != nil {
		return nil, fmt.Errorf("couldn't load configuration: %w", err)
	}

	log.Debug("Successfully loaded configuration (also switching log level.)")
	lcf.Level.SetLevel(a.config.Logging.Level)

	log.Debug("Connecting to the cache backend.")
	kv, err := cache.NewRedisKV(ctx, cache.Options{
		URI:      a.config.Redis.URI,
		PoolSize: a.config.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to the cache backend: %w", err)
	}
	a.cache = cache.NewClient(kv, log)

	log.Debug("Initializing Storage struct.")
	a.storage = storage.NewStorage(log)

	log.Debug("Initializing cluster state.")
	a.state = state.NewClusterState(a.cache, a.storage, log)

	log.Debug("Initializing Discord struct.")
	a.discord, err = discord.NewDiscord(ctx, log, a.config.Discord.Token,
		discord.NewConfig(a.config.Captcha.Expiry), a.state)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize Discord struct: %w", err)
	}

	return a, nil
}

func (a *app) Run() error {
	a.logger.Debug("Connecting to PostgreSQL storage.")
	if err := a.storage.Connect(a.ctx, a.config.Storage.PostgresDSN); err != nil {
		return fmt.Errorf("couldn't connect to storage: %w", err)
	}
	defer func() {
		a.logger.Debug("Closing PostgreSQL storage.")
		if err := a.storage.Close(); err != nil {
			a.logger.Errorf("Couldn't close storage: %s.", err)
		}
	}()

	a.logger.Debug("Connecting to Discord API gateway.")
	if err := a.discord.Connect(); err != nil {
		return fmt.Errorf("couldn't connect to Discord: %w", err)
	}
	defer func() {
		a.logger.Debug("Closing connection with Discord API gateway.")
		if err := a.discord.Close(); err != nil {
			a.logger.Errorf("Couldn't close Discord: %s.", err)
		}
	}()

	a.logger.Info("Launch complete. Send SIGINT to gracefully terminate.")
	<-a.ctx.Done()
	a.logger.Info("SIGINT received, terminating.")

	return a.ctx.Err()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	lcf := zap.NewDevelopmentConfig() // to later switch level without reallocation
	lcf.Level.SetLevel(zapcore.DebugLevel)
	lcf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	lcf.DisableCaller = true
	logger, _ := lcf.Build()
	log := logger.Sugar()

	log.Info("Initializing application.")
	a, err := newApp(ctx, lcf, log)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Fatalf("Couldn't initialize application: %s.", err)
		}

		return
	}

	log.Debug("Initialization tasks complete, continuing with launch.")
	if err := a.Run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Fatalf("Application crashed: %s.", err)
		}
	}
}
