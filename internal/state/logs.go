package state

import (
	"context"
	"sync"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
)

// LogsChannels coordinates concurrent creations of guild logs channels.
//
// When several events need the logs channel of a guild that has none yet,
// only the first caller creates it; the others wait on the same creation
// instead of racing duplicate channel creations.
type LogsChannels struct {
	mu      sync.Mutex
	pending map[model.Snowflake]*LogsChannelCreation
}

// LogsChannelCreation is a single in-flight logs channel creation.
type LogsChannelCreation struct {
	done      chan struct{}
	channelID model.Snowflake
	err       error
}

// NewLogsChannels creates an empty coordination map.
func NewLogsChannels() *LogsChannels {
	return &LogsChannels{pending: make(map[model.Snowflake]*LogsChannelCreation)}
}

// Begin registers interest in the logs channel creation of a guild. The
// first caller gets owner == true and must call Finish exactly once; later
// callers get the same creation with owner == false and should Wait on it.
func (l *LogsChannels) Begin(guildID model.Snowflake) (creation *LogsChannelCreation, owner bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if creation, ok := l.pending[guildID]; ok {
		return creation, false
	}

	creation = &LogsChannelCreation{done: make(chan struct{})}
	l.pending[guildID] = creation
	return creation, true
}

// Finish publishes the outcome of a creation and wakes all waiters.
func (l *LogsChannels) Finish(guildID model.Snowflake, creation *LogsChannelCreation, channelID model.Snowflake, err error) {
	l.mu.Lock()
	delete(l.pending, guildID)
	l.mu.Unlock()

	creation.channelID = channelID
	creation.err = err
	close(creation.done)
}

// Wait blocks until the creation finishes or the context is canceled.
func (c *LogsChannelCreation) Wait(ctx context.Context) (model.Snowflake, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.done:
		return c.channelID, c.err
	}
}
