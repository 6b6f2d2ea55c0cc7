package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lifelens/internal/config"
	"lifelens/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// Store exposes the record collections on top of a Backend.
type Store struct {
	backend Backend
	lock    *flock.Flock
	logger  *slog.Logger
	now     func() time.Time
	newID   func() (uuid.UUID, error)

	// mu serializes writers in this process; lock covers other processes.
	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for read fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "records")
		}
	}
}

// WithClock overrides the time source used for meal timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLockFile guards writes with an advisory lock on path.
func WithLockFile(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.lock = flock.New(path)
		}
	}
}

// New wraps backend in a Store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewV7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the data directory and opens the configured engine with the
// shared write lock.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(backend, WithLogger(logger), WithLockFile(cfg.StoreLockPath())), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// update runs fn while holding the process mutex and the cross-process lock.
func (s *Store) update(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock != nil {
		locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("acquire store lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("acquire store lock: %s is held", s.lock.Path())
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Warn("failed to release store lock", logging.Error(err))
			}
		}()
	}
	return fn()
}

// readJSON decodes key into target. It reports false when the value is
// missing, unreadable or corrupt; the latter two are logged.
func (s *Store) readJSON(ctx context.Context, key string, target any) bool {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(s.logger, "record read failed; using default", "record_read_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "default value shown"),
		)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		logging.WarnWithContext(s.logger, "stored record is corrupt; using default", "record_corrupt",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "default value shown"),
			logging.String(logging.FieldErrorHint, "the next write replaces the value"),
		)
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.backend.Set(ctx, key, string(data))
}
