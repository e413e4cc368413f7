package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestReadDefaults(t *testing.T) {
	config, err := Read()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379", config.Redis.URI)
	assert.Equal(t, 5*time.Minute, config.Captcha.Expiry)
	assert.Equal(t, zapcore.InfoLevel, config.Logging.Level)
}

func TestReadEnvironment(t *testing.T) {
	t.Setenv("RAIDPROTECT_DISCORD_TOKEN", "token-from-env")
	t.Setenv("RAIDPROTECT_REDIS_URI", "redis://cache:6379")
	t.Setenv("RAIDPROTECT_REDIS_POOLSIZE", "32")
	t.Setenv("RAIDPROTECT_CAPTCHA_EXPIRY", "2m")
	t.Setenv("RAIDPROTECT_LOGGING_LEVEL", "debug")

	config, err := Read()
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", config.Discord.Token)
	assert.Equal(t, "redis://cache:6379", config.Redis.URI)
	assert.Equal(t, 32, config.Redis.PoolSize)
	assert.Equal(t, 2*time.Minute, config.Captcha.Expiry)
	assert.Equal(t, zapcore.DebugLevel, config.Logging.Level)
}

func TestReadInvalidLevel(t *testing.T) {
	t.Setenv("RAIDPROTECT_LOGGING_LEVEL", "loud")

	_, err := Read()
	assert.Error(t, err)
}
