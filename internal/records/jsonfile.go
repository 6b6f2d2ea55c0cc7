package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"lifelens/internal/fileutil"
)

// JSONBackend keeps every collection in one JSON object on disk. The file is
// rewritten atomically on each change and re-read on each access so other
// processes observe writes.
type JSONBackend struct {
	mu   sync.Mutex
	path string
}

// ErrCorruptDocument reports a records file that is not a JSON object of
// strings. Reads surface it; the next write replaces the document.
var ErrCorruptDocument = errors.New("corrupt records document")

// OpenJSON returns a backend for path. The file is created on first write.
func OpenJSON(path string) (*JSONBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}
	return &JSONBackend{path: path}, nil
}

func (b *JSONBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return map[string]string{}, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, b.path, err)
	}
	return doc, nil
}

func (b *JSONBackend) save(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return fileutil.WriteFileAtomic(b.path, append(data, '\n'), 0o644)
}

func (b *JSONBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := b.load()
	if err != nil {
		return "", false, err
	}
	value, ok := doc[key]
	return value, ok, nil
}

func (b *JSONBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := b.load()
	if err != nil && !errors.Is(err, ErrCorruptDocument) {
		return err
	}
	doc[key] = value
	return b.save(doc)
}

func (b *JSONBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := b.load()
	if err != nil && !errors.Is(err, ErrCorruptDocument) {
		return err
	}
	for _, key := range keys {
		delete(doc, key)
	}
	return b.save(doc)
}

func (b *JSONBackend) Close() error { return nil }
