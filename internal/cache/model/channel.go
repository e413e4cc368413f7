package model

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Channel is the cached model of a guild channel.
//
// The Kind field discriminates between text, voice, category and thread
// channels. Threads carry the ID of their parent channel and no permission
// overwrites of their own: their permissions derive from the parent.
type Channel struct {
	// ID of the channel.
	ID Snowflake `msgpack:"id"`
	// ID of the guild to which the channel belongs.
	GuildID Snowflake `msgpack:"guild_id"`
	// Kind of the channel.
	Kind discordgo.ChannelType `msgpack:"kind"`
	// Name of the channel.
	Name string `msgpack:"name"`
	// Parent of the channel: the category for categorized channels, the
	// parent channel for threads. Zero when the channel has no parent.
	ParentID Snowflake `msgpack:"parent_id,omitempty"`
	// Sorting position of the channel. Always zero for threads.
	Position int `msgpack:"position"`
	// Permission overwrites of the channel. Always empty for threads.
	PermissionOverwrites []PermissionOverwrite `msgpack:"permission_overwrites,omitempty"`
	// Amount of seconds a user has to wait between two messages.
	RateLimitPerUser int `msgpack:"rate_limit_per_user,omitempty"`
}

func (c *Channel) Key() string           { return ChannelKey(c.ID) }
func (c *Channel) Expiry() time.Duration { return 0 }

// IsThread reports whether the channel is a thread.
func (c *Channel) IsThread() bool {
	return IsThread(c.Kind)
}

// IsThread reports whether the channel type is a thread type.
func IsThread(kind discordgo.ChannelType) bool {
	switch kind {
	case discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	default:
		return false
	}
}

// IsCached reports whether channels of this type are mirrored in the cache.
//
// KEEP IN SYNC with the channel reducers in the cache package: the reducers
// use this predicate to decide whether an incoming channel is cacheable.
func IsCached(kind discordgo.ChannelType) bool {
	switch kind {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildStageVoice,
		discordgo.ChannelTypeGuildCategory,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	default:
		return false
	}
}

// OverwriteKind is the target kind of a permission overwrite.
type OverwriteKind uint8

const (
	OverwriteRole OverwriteKind = iota
	OverwriteMember
)

// PermissionOverwrite is a per-target allow/deny pair applied on top of base
// permissions within one channel.
type PermissionOverwrite struct {
	// ID of the role or member targeted by the overwrite.
	TargetID Snowflake `msgpack:"target_id"`
	// Whether the overwrite targets a role or a member.
	Kind OverwriteKind `msgpack:"kind"`
	// Granted permissions.
	Allow Permissions `msgpack:"allow"`
	// Denied permissions.
	Deny Permissions `msgpack:"deny"`
}
