// Package cache implements the resource cache of the bot.
//
// The cache mirrors guild, channel and role state received from the gateway
// into an external key/value store, computes effective member permissions
// from the mirrored state, and gates outbound HTTP requests on those
// permissions.
package cache

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

// Client exposes typed operations over the key/value backend.
//
// A Client is cheap to copy and safe for concurrent use. Values returned by
// its operations are owned snapshots: later writes do not affect them.
type Client struct {
	kv  KV
	log *zap.SugaredLogger
}

// NewClient creates a cache client over the given backend.
func NewClient(kv KV, log *zap.SugaredLogger) *Client {
	return &Client{kv: kv, log: log}
}

// Ping checks connectivity with the backend.
func (c *Client) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

// Get fetches and decodes a cached value. It returns nil without error when
// the key does not exist. A record that fails to decode is treated as a
// miss: it is logged and nil is returned.
func Get[T any](ctx context.Context, c *Client, key string) (*T, error) {
	buf, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}

	value := new(T)
	if err := Decode(buf, value); err != nil {
		c.log.Errorw("Treating undecodable cache record as a miss.", "key", key, "error", err)
		return nil, nil
	}
	return value, nil
}

// Set encodes and stores a value, honoring the model's default expiry.
func (c *Client) Set(ctx context.Context, value model.Model) error {
	pipe := NewPipeline()
	if err := pipe.SetModel(value); err != nil {
		return err
	}
	return c.kv.Pipelined(ctx, pipe)
}

// Delete removes the given keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	pipe := NewPipeline()
	for _, key := range keys {
		pipe.Del(key)
	}
	return c.kv.Pipelined(ctx, pipe)
}

// Pipelined executes a pipeline on the backend.
func (c *Client) Pipelined(ctx context.Context, pipe *Pipeline) error {
	return c.kv.Pipelined(ctx, pipe)
}

// GuildChannels returns the cached channels of a guild ordered by position,
// then ID.
//
// The guild's channel set and the per-channel records are only eventually
// consistent, so entries missing from the store or failing to decode are
// skipped: the returned list may be shorter than the guild's channel set. An
// uncached guild yields an empty list.
func (c *Client) GuildChannels(ctx context.Context, guildID model.Snowflake) ([]model.Channel, error) {
	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, nil
	}

	pipe := NewPipeline()
	for _, id := range guild.Channels.Values() {
		pipe.Get(model.ChannelKey(id))
	}
	if err := c.kv.Pipelined(ctx, pipe); err != nil {
		return nil, err
	}

	channels := make([]model.Channel, 0, pipe.Len())
	for _, buf := range pipe.Values() {
		if buf == nil {
			continue
		}
		var channel model.Channel
		if err := Decode(buf, &channel); err != nil {
			c.log.Errorw("Skipping undecodable channel record.", "guild", guildID, "error", err)
			continue
		}
		channels = append(channels, channel)
	}

	sort.Slice(channels, func(i, j int) bool {
		if channels[i].Position != channels[j].Position {
			return channels[i].Position < channels[j].Position
		}
		return channels[i].ID < channels[j].ID
	})

	return channels, nil
}

// GuildRoles returns the cached roles of a guild in role hierarchy order
// (lowest first). The same partial-list tolerance as GuildChannels applies.
func (c *Client) GuildRoles(ctx context.Context, guildID model.Snowflake) ([]model.Role, error) {
	guild, err := Get[model.Guild](ctx, c, model.GuildKey(guildID))
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, nil
	}

	pipe := NewPipeline()
	for _, id := range guild.Roles.Values() {
		pipe.Get(model.RoleKey(id))
	}
	if err := c.kv.Pipelined(ctx, pipe); err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, pipe.Len())
	for _, buf := range pipe.Values() {
		if buf == nil {
			continue
		}
		var role model.Role
		if err := Decode(buf, &role); err != nil {
			c.log.Errorw("Skipping undecodable role record.", "guild", guildID, "error", err)
			continue
		}
		roles = append(roles, role)
	}

	sort.Slice(roles, func(i, j int) bool {
		return model.CompareRoles(&roles[i], &roles[j]) < 0
	})

	return roles, nil
}
