package xref

import (
	"context"
	"log/slog"
	"sync"
)

// Store caches mappings. Implementations must be safe for concurrent use.
// Entries are immutable once written; writing an equal value again is harmless.
type Store interface {
	Get(ctx context.Context, key string) (Mapping, bool)
	Put(ctx context.Context, key string, m Mapping)
}

// Backend is a persistent store that can fail.
type Backend interface {
	Load(ctx context.Context, key string) (Mapping, bool, error)
	Save(ctx context.Context, key string, m Mapping) error
}

// MemoryStore is an unbounded process-lifetime map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Mapping
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Mapping)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Mapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.entries[key]
	return m, ok
}

func (s *MemoryStore) Put(_ context.Context, key string, m Mapping) {
	s.mu.Lock()
	s.entries[key] = m
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Tiered reads memory first, then a persistent backend, and writes through to both.
// Backend failures are logged and degrade to a miss.
type Tiered struct {
	mem     *MemoryStore
	backend Backend
	log     *slog.Logger
}

// NewTiered wraps backend with an in-process memory tier.
func NewTiered(backend Backend, logger *slog.Logger) *Tiered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tiered{
		mem:     NewMemoryStore(),
		backend: backend,
		log:     logger.With("component", "xref-cache"),
	}
}

func (t *Tiered) Get(ctx context.Context, key string) (Mapping, bool) {
	if m, ok := t.mem.Get(ctx, key); ok {
		return m, true
	}

	m, ok, err := t.backend.Load(ctx, key)
	if err != nil {
		t.log.Warn("cache backend load failed", "key", key, "error", err)
		return Mapping{}, false
	}
	if ok {
		t.mem.Put(ctx, key, m)
	}
	return m, ok
}

func (t *Tiered) Put(ctx context.Context, key string, m Mapping) {
	t.mem.Put(ctx, key, m)
	if err := t.backend.Save(ctx, key, m); err != nil {
		t.log.Warn("cache backend save failed", "key", key, "error", err)
	}
}
