package model

import "time"

// Guild is the cached model of a guild.
type Guild struct {
	// ID of the guild.
	ID Snowflake `msgpack:"id"`
	// Whether the guild is unavailable.
	//
	// Channels and roles of unavailable guilds are evicted from the cache,
	// but the guild entry itself remains.
	Unavailable bool `msgpack:"unavailable"`
	// Name of the guild.
	Name string `msgpack:"name"`
	// Hash of the guild icon.
	Icon string `msgpack:"icon,omitempty"`
	// ID of the guild's owner.
	OwnerID Snowflake `msgpack:"owner_id"`
	// Information about the bot member in the guild.
	//
	// If this field is nil, the information has not been properly received
	// and permission calculations for the current member fail.
	CurrentMember *CurrentMember `msgpack:"current_member,omitempty"`
	// Set of role IDs of the guild.
	Roles IDSet `msgpack:"roles"`
	// Set of channel IDs of the guild.
	Channels IDSet `msgpack:"channels"`
}

func (g *Guild) Key() string           { return GuildKey(g.ID) }
func (g *Guild) Expiry() time.Duration { return 0 }

// CurrentMember is the bot's own membership in a guild.
type CurrentMember struct {
	// ID of the bot current member.
	ID Snowflake `msgpack:"id"`
	// When the bot can resume communication in the guild again.
	//
	// A non-nil value may be in the past and must be compared against the
	// current time.
	CommunicationDisabledUntil *time.Time `msgpack:"communication_disabled_until,omitempty"`
	// Roles of the bot.
	Roles []Snowflake `msgpack:"roles"`
}

// Role is the cached model of a guild role.
//
// Roles are cached as separate entries rather than within guilds to limit
// the data fetched when requesting a Guild.
type Role struct {
	// ID of the role. The role whose ID equals its guild ID is the implicit
	// everyone role.
	ID Snowflake `msgpack:"id"`
	// ID of the guild to which the role belongs.
	GuildID Snowflake `msgpack:"guild_id"`
	// Name of the role.
	Name string `msgpack:"name"`
	// Color of the role.
	Color int `msgpack:"color"`
	// Icon image hash.
	Icon string `msgpack:"icon,omitempty"`
	// Icon unicode emoji, set if the role icon is an existing unicode emoji
	// rather than a custom image.
	UnicodeEmoji string `msgpack:"unicode_emoji,omitempty"`
	// Position of the role.
	//
	// The position should be positive but can be negative in some cases.
	// Only the ordering is important for permission calculations.
	Position int64 `msgpack:"position"`
	// Permissions of the role.
	Permissions Permissions `msgpack:"permissions"`
	// Whether the role is managed. Managed roles include bot, integration
	// or boost roles.
	Managed bool `msgpack:"managed"`
}

func (r *Role) Key() string           { return RoleKey(r.ID) }
func (r *Role) Expiry() time.Duration { return 0 }

// CompareRoles compares two roles for hierarchy checks.
//
// Roles are primarily ordered by their position; positions are not
// guaranteed to be unique, so ties are broken by ID in ascending order. The
// result is negative when a is below b, positive when a is above b, and zero
// only when a and b are the same role.
func CompareRoles(a, b *Role) int {
	switch {
	case a.Position != b.Position:
		if a.Position < b.Position {
			return -1
		}
		return 1
	case a.ID != b.ID:
		if a.ID < b.ID {
			return -1
		}
		return 1
	default:
		return 0
	}
}
