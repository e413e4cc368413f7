package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

func TestLogsChannelsFirstCallerOwns(t *testing.T) {
	logs := NewLogsChannels()

	creation, owner := logs.Begin(1)
	require.True(t, owner)

	second, owner := logs.Begin(1)
	assert.False(t, owner)
	assert.Same(t, creation, second)

	// A different guild gets its own creation.
	_, owner = logs.Begin(2)
	assert.True(t, owner)
}

func TestLogsChannelsWaitersShareResult(t *testing.T) {
	logs := NewLogsChannels()
	ctx := context.Background()

	creation, owner := logs.Begin(1)
	require.True(t, owner)

	var wg sync.WaitGroup
	results := make([]model.Snowflake, 3)
	for i := 0; i < 3; i++ {
		waiter, owner := logs.Begin(1)
		require.False(t, owner)

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := waiter.Wait(ctx)
			assert.NoError(t, err)
			results[i] = id
		}(i)
	}

	logs.Finish(1, creation, 40, nil)
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, model.Snowflake(40), id)
	}

	// After Finish the guild can start a fresh creation.
	_, owner = logs.Begin(1)
	assert.True(t, owner)
}

func TestLogsChannelsPropagatesError(t *testing.T) {
	logs := NewLogsChannels()
	ctx := context.Background()

	creation, owner := logs.Begin(1)
	require.True(t, owner)

	waiter, _ := logs.Begin(1)
	failure := errors.New("creation failed")
	logs.Finish(1, creation, 0, failure)

	_, err := waiter.Wait(ctx)
	assert.ErrorIs(t, err, failure)
}

func TestLogsChannelsWaitCancellation(t *testing.T) {
	logs := NewLogsChannels()

	_, owner := logs.Begin(1)
	require.True(t, owner)
	waiter, _ := logs.Begin(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := waiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
