package records

import (
	"context"
	"fmt"
	"sync"

	"lifelens/internal/config"
)

// Backend is a string key-value store holding the serialized collections.
type Backend interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// OpenBackend opens the engine selected in cfg at cfg.StorePath().
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Store.Engine {
	case config.EngineJSON:
		return OpenJSON(cfg.StorePath())
	case config.EngineSQLite, "":
		return OpenSQLite(ctx, cfg.StorePath())
	default:
		return nil, fmt.Errorf("unsupported store engine %q", cfg.Store.Engine)
	}
}

// MemoryBackend keeps values in process memory. It is used by tests and by
// callers that must not touch disk.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
