// Package config loads the bot configuration from the environment, with an
// optional config.yaml override.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Discord struct {
		Token string
	}

	Redis struct {
		URI      string
		PoolSize int
	}

	Storage struct {
		PostgresDSN string
	}

	Captcha struct {
		// Expiry is the delay a member has to solve its captcha before
		// being kicked.
		Expiry time.Duration
	}

	Logging struct {
		Level zapcore.Level
	}
}

func Read() (*Config, error) {
	v := viper.New()
	configureEnv(v)
	configureDefaults(v)
	configureLocation(v)
	return readUnmarshalConfig(v)
}

func configureEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("raidprotect")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func configureDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("redis.uri", "redis://localhost:6379")
	v.SetDefault("redis.poolsize", 0)
	v.SetDefault("storage.postgresdsn", "")
	v.SetDefault("captcha.expiry", 5*time.Minute)
	v.SetDefault("logging.level", "info")
}

func configureLocation(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
}

func readUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; the environment is enough.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		levelHook(), mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}
