// Package state holds the shared handles of the bot, passed by reference
// through the event and interaction paths.
package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/baptiste0928/raidprotect-sub000/internal/cache"
	"github.com/baptiste0928/raidprotect-sub000/internal/cache/model"
	"github.com/baptiste0928/raidprotect-sub000/internal/pending"
	"github.com/baptiste0928/raidprotect-sub000/internal/storage"
)

// ClusterState composes the cache, the outbound transport, the config store
// and the pending-state registry. All handles are safe for concurrent use.
type ClusterState struct {
	cache   *cache.Client
	store   *storage.Storage
	pending *pending.Store
	logs    *LogsChannels
	log     *zap.SugaredLogger

	mu          sync.RWMutex
	transport   cache.Transport
	currentUser model.Snowflake
}

// NewClusterState assembles the shared state of the bot. The outbound
// transport is attached later with SetTransport, once the session exists.
func NewClusterState(c *cache.Client, store *storage.Storage, log *zap.SugaredLogger) *ClusterState {
	return &ClusterState{
		cache:   c,
		store:   store,
		pending: pending.NewStore(c),
		logs:    NewLogsChannels(),
		log:     log,
	}
}

func (s *ClusterState) Cache() *cache.Client        { return s.cache }
func (s *ClusterState) Store() *storage.Storage     { return s.store }
func (s *ClusterState) Pending() *pending.Store     { return s.pending }
func (s *ClusterState) LogsChannels() *LogsChannels { return s.logs }
func (s *ClusterState) Log() *zap.SugaredLogger     { return s.log }

// SetTransport attaches the outbound transport. Must be called before any
// request path runs.
func (s *ClusterState) SetTransport(transport cache.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = transport
}

// Transport returns the outbound transport.
func (s *ClusterState) Transport() cache.Transport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transport
}

// CacheHTTP returns a permission-checked request client for a guild.
func (s *ClusterState) CacheHTTP(guildID model.Snowflake) *cache.CacheHTTP {
	return s.cache.HTTP(s.Transport(), guildID)
}

// SetCurrentUser records the bot's own user id, received on Ready.
func (s *ClusterState) SetCurrentUser(id model.Snowflake) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = id
}

// CurrentUser returns the bot's own user id, or zero before Ready.
func (s *ClusterState) CurrentUser() model.Snowflake {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}
