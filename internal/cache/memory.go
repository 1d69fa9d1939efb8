package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the default in-process backend. Expired entries are evicted
// lazily on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	log     *logger.Logger
}

func NewMemoryCache(baseLog *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		log:     baseLog.With("cache", "memory"),
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return entry.value, true
}

func (m *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
}

// Len reports live entries, counting out anything already expired.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, entry := range m.entries {
		if !m.now().After(entry.expiresAt) {
			n++
		}
	}
	return n
}
