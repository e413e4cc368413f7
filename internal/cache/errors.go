package cache

import (
	"errors"
	"fmt"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

var (
	// ErrConnTimeout is returned when no connection could be checked out of
	// the pool in time.
	ErrConnTimeout = errors.New("cache: connection checkout timed out")

	// ErrGuildMissing is returned when a guild required for a permission
	// calculation is not cached.
	ErrGuildMissing = errors.New("cache: guild not found in cache")
	// ErrEveryoneMissing is returned when the everyone role of a guild is
	// not cached. The everyone role must exist whenever its guild exists, so
	// this error means the cache is in a transient inconsistent state.
	ErrEveryoneMissing = errors.New("cache: everyone role not found in cache")
	// ErrChannelMissing is returned when the channel of a permission query
	// is not cached.
	ErrChannelMissing = errors.New("cache: channel not found in cache")
	// ErrParentMissing is returned when the parent of a thread is not
	// cached.
	ErrParentMissing = errors.New("cache: thread parent channel not found in cache")
	// ErrCurrentMemberMissing is returned when the bot's own membership has
	// not been received for a guild.
	ErrCurrentMemberMissing = errors.New("cache: current member not found in cache")

	// ErrRoleBelowBot is returned when an operation requires the target
	// role to be strictly below the bot's highest role.
	ErrRoleBelowBot = errors.New("cache: role is not below the bot's highest role")
)

// DecodeError is returned when a cached record cannot be decoded. Readers
// treat it as a cache miss; the record is re-populated on the next write.
type DecodeError struct {
	// Kind is the entity type that failed to decode.
	Kind string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cache: failed to decode %s: %s", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MissingPermissionError is returned by the HTTP mediator when the bot lacks
// the permissions required by an outbound request. The request is not sent.
type MissingPermissionError struct {
	// Required holds the missing permissions.
	Required model.Permissions
}

func (e *MissingPermissionError) Error() string {
	return fmt.Sprintf("cache: missing permissions %#x for request", int64(e.Required))
}
