package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVGetSet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	value, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, value)

	pipe := NewPipeline()
	pipe.Set("key", []byte("value"), 0)
	require.NoError(t, kv.Pipelined(ctx, pipe))

	value, err = kv.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	pipe = NewPipeline()
	pipe.Del("key")
	require.NoError(t, kv.Pipelined(ctx, pipe))

	value, err = kv.Get(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryKVExpiry(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	pipe := NewPipeline()
	pipe.Set("ephemeral", []byte("value"), 50*time.Millisecond)
	pipe.Set("durable", []byte("value"), 0)
	require.NoError(t, kv.Pipelined(ctx, pipe))
	assert.Equal(t, 2, kv.Len())

	time.Sleep(80 * time.Millisecond)

	value, err := kv.Get(ctx, "ephemeral")
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = kv.Get(ctx, "durable")
	require.NoError(t, err)
	assert.NotNil(t, value)
}

func TestMemoryKVPipelineOrder(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	// Commands of a single pipeline apply in declared order: a GET placed
	// between a SET and a DEL of the same key sees the SET.
	pipe := NewPipeline()
	pipe.Set("key", []byte("value"), 0)
	pipe.Get("key")
	pipe.Del("key")
	pipe.Get("key")
	require.NoError(t, kv.Pipelined(ctx, pipe))

	values := pipe.Values()
	require.Len(t, values, 2)
	assert.Equal(t, []byte("value"), values[0])
	assert.Nil(t, values[1])
}
