// Package model contains the models of the entities mirrored in the cache.
//
// Each model knows its own key namespace and default expiration. Models are
// serialized with MessagePack, which preserves field names so that fields can
// be added without invalidating previously cached records.
package model

import (
	"fmt"
	"sort"
	"time"
)

// Snowflake is a Discord entity ID.
type Snowflake = uint64

// Model is implemented by every type stored in the cache.
type Model interface {
	// Key returns the cache key of this value.
	Key() string
	// Expiry returns the default expiration of the key, 0 if it never
	// expires.
	Expiry() time.Duration
}

func GuildKey(id Snowflake) string {
	return fmt.Sprintf("c:guild:%d", id)
}

func ChannelKey(id Snowflake) string {
	return fmt.Sprintf("c:channel:%d", id)
}

func RoleKey(id Snowflake) string {
	return fmt.Sprintf("c:role:%d", id)
}

// IDSet is a set of unique Snowflake IDs.
//
// The zero value is not usable, use NewIDSet.
type IDSet map[Snowflake]struct{}

// NewIDSet creates a new IDSet from the specified IDs.
func NewIDSet(ids ...Snowflake) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s IDSet) Add(id Snowflake)    { s[id] = struct{}{} }
func (s IDSet) Remove(id Snowflake) { delete(s, id) }

func (s IDSet) Contains(id Snowflake) bool {
	_, exists := s[id]
	return exists
}

// Values returns the set values in ascending order.
func (s IDSet) Values() []Snowflake {
	v := make([]Snowflake, 0, len(s))
	for id := range s {
		v = append(v, id)
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
	return v
}
