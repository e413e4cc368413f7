package storage

import (
	"context"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/util"
)

// GuildConfig is the persisted configuration of a guild, stored as a single
// document.
type GuildConfig struct {
	ID         model.Snowflake  `json:"id"`
	LogsChan   model.Snowflake  `json:"logs_chan,omitempty"`
	Lang       string           `json:"lang"`
	Moderation ModerationConfig `json:"moderation"`
	Captcha    CaptchaConfig    `json:"captcha"`
}

// ModerationConfig configures the moderation commands of a guild.
type ModerationConfig struct {
	// Roles allowed to use moderation commands.
	Roles []model.Snowflake `json:"roles,omitempty"`
	// EnforceReason requires moderators to fill the reason field.
	EnforceReason bool `json:"enforce_reason"`
	// Anonymize hides the moderator identity in sanction notifications.
	Anonymize bool `json:"anonymize"`
}

// CaptchaConfig configures the join captcha of a guild.
type CaptchaConfig struct {
	Enabled bool            `json:"enabled"`
	Channel model.Snowflake `json:"channel,omitempty"`
	Message model.Snowflake `json:"message,omitempty"`
	// Role assigned to unverified members while the captcha is pending.
	Role model.Snowflake `json:"role,omitempty"`
	// VerifiedRoles are granted once the captcha is solved. At most 5.
	VerifiedRoles []model.Snowflake `json:"verified_roles,omitempty"`
	Logs          model.Snowflake   `json:"logs,omitempty"`
}

// NewGuildConfig returns the default configuration of a guild.
func NewGuildConfig(id model.Snowflake) *GuildConfig {
	return &GuildConfig{
		ID:         id,
		Lang:       "fr",
		Moderation: ModerationConfig{Anonymize: true},
	}
}

// GetGuildOrCreate fetches the configuration of a guild, inserting the
// default configuration first if the guild is unknown.
func (s *Storage) GetGuildOrCreate(ctx context.Context, id model.Snowflake) (*GuildConfig, error) {
	key, err := util.SnowflakeToInt64(id)
	if err != nil {
		return nil, err
	}

	config := NewGuildConfig(id)
	err = s.query(ctx,
		`with e as (insert into guild_config (id, config) values ($1, $2) on conflict do nothing returning config)
		 select config from e union select config from guild_config where id = $1`,
		[]interface{}{key, config},
		[]interface{}{config},
	)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// UpdateGuild saves the configuration of a guild, overwriting the stored
// document.
func (s *Storage) UpdateGuild(ctx context.Context, config *GuildConfig) error {
	key, err := util.SnowflakeToInt64(config.ID)
	if err != nil {
		return err
	}

	return s.query(ctx,
		`insert into guild_config (id, config) values ($1, $2)
		 on conflict (id) do update set config = excluded.config`,
		[]interface{}{key, config},
		nil,
	)
}
