package storage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuildConfigDefaults(t *testing.T) {
	config := NewGuildConfig(1)

	assert.Equal(t, uint64(1), config.ID)
	assert.Equal(t, "fr", config.Lang)
	assert.True(t, config.Moderation.Anonymize)
	assert.False(t, config.Moderation.EnforceReason)
	assert.False(t, config.Captcha.Enabled)
}

func TestGuildConfigJSONRoundTrip(t *testing.T) {
	config := NewGuildConfig(1)
	config.LogsChan = 40
	config.Captcha.Enabled = true
	config.Captcha.Role = 3
	config.Captcha.VerifiedRoles = []uint64{4, 5}

	buf, err := json.Marshal(config)
	require.NoError(t, err)

	var decoded GuildConfig
	require.NoError(t, json.Unmarshal(buf, &decoded))
	assert.Equal(t, *config, decoded)
}

func TestGuildConfigJSONOmitsUnsetIDs(t *testing.T) {
	buf, err := json.Marshal(NewGuildConfig(1))
	require.NoError(t, err)

	var document map[string]any
	require.NoError(t, json.Unmarshal(buf, &document))
	assert.NotContains(t, document, "logs_chan")
}
