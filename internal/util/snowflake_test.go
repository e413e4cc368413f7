package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnowflake(t *testing.T) {
	id, err := ParseSnowflake("282210625058537472")
	require.NoError(t, err)
	assert.Equal(t, uint64(282210625058537472), id)

	_, err = ParseSnowflake("")
	assert.Error(t, err)

	_, err = ParseSnowflake("-1")
	assert.Error(t, err)

	_, err = ParseSnowflake("not-an-id")
	assert.Error(t, err)
}

func TestFormatSnowflake(t *testing.T) {
	assert.Equal(t, "282210625058537472", FormatSnowflake(282210625058537472))
	assert.Equal(t, "18446744073709551615", FormatSnowflake(math.MaxUint64))
}

func TestSnowflakeToInt64(t *testing.T) {
	val, err := SnowflakeToInt64(282210625058537472)
	require.NoError(t, err)
	assert.Equal(t, int64(282210625058537472), val)

	val, err = SnowflakeToInt64(math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), val)

	_, err = SnowflakeToInt64(math.MaxInt64 + 1)
	assert.Error(t, err)
}

func TestMustParseSnowflake(t *testing.T) {
	assert.Equal(t, uint64(42), MustParseSnowflake("42"))
	assert.Panics(t, func() { MustParseSnowflake("nope") })
}
