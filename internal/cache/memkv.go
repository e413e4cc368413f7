package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is an in-memory KV implementation with the same expiration and
// pipeline semantics as the Redis backend. It is intended for tests.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero when the key never expires
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memEntry)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(key), nil
}

// get returns the live value of a key, reaping it if expired. Callers must
// hold mu.
func (m *MemoryKV) get(key string) []byte {
	entry, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return entry.value
}

func (m *MemoryKV) Pipelined(_ context.Context, pipe *Pipeline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pipe.values = pipe.values[:0]
	for _, cmd := range pipe.cmds {
		switch cmd.op {
		case opGet:
			pipe.values = append(pipe.values, m.get(cmd.key))
		case opSet:
			entry := memEntry{value: cmd.value}
			if cmd.ttl > 0 {
				entry.expiresAt = time.Now().Add(cmd.ttl)
			}
			m.entries[cmd.key] = entry
		case opDel:
			delete(m.entries, cmd.key)
		}
	}

	return nil
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

// Len returns the number of live keys.
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.entries {
		if m.get(key) != nil {
			n++
		}
	}
	return n
}
