package util

import (
	"fmt"
	"math"
	"strconv"
)

// ParseSnowflake parses a Snowflake ID string as received from the gateway.
func ParseSnowflake(s string) (uint64, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse Snowflake ID string: %w", err)
	}
	return val, nil
}

// MustParseSnowflake parses a Snowflake ID string, panicking on malformed
// input. Only use on IDs produced by the library itself.
func MustParseSnowflake(s string) uint64 {
	val, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return val
}

// FormatSnowflake formats a Snowflake ID for the gateway or REST API.
func FormatSnowflake(s uint64) string {
	return strconv.FormatUint(s, 10)
}

// SnowflakeToInt64 converts a Snowflake ID to a signed 64-bit integer for
// storage backends without unsigned integer support. IDs with the top bit
// set do not fit and are rejected.
func SnowflakeToInt64(s uint64) (int64, error) {
	if s > math.MaxInt64 {
		return 0, fmt.Errorf("snowflake %d does not fit in int64", s)
	}
	return int64(s), nil
}
