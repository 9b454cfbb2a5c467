package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/apex/log"
)

// FileBackend persists every key into one JSON document on disk, the way a
// browser profile keeps local storage. The whole file is rewritten on each
// write, and reloaded whenever another process has replaced it.
type FileBackend struct {
	mu      sync.Mutex
	path    string
	data    map[string]json.RawMessage
	modTime time.Time
}

// NewFileBackend loads path if it exists. A missing file starts empty; an
// unreadable one is logged and also starts empty.
func NewFileBackend(path string) (*FileBackend, error) {
	b := &FileBackend{path: path, data: make(map[string]json.RawMessage)}
	if err := b.refresh(); err != nil {
		return nil, err
	}
	return b, nil
}

// refresh reloads the document when the file changed since it was last
// read or written. Caller holds mu.
func (b *FileBackend) refresh() error {
	info, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat data file %s: %w", b.path, err)
	}
	if info.ModTime().Equal(b.modTime) {
		return nil
	}

	raw, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("failed to read data file %s: %w", b.path, err)
	}
	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &data); err != nil {
		log.WithError(err).WithField("path", b.path).Warn("data file is corrupt, starting empty")
	}
	b.data = data
	b.modTime = info.ModTime()
	return nil
}

func (b *FileBackend) Read(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refresh(); err != nil {
		return nil, err
	}
	data, ok := b.data[key]
	if !ok {
		return nil, ErrMissing
	}
	return slices.Clone(data), nil
}

func (b *FileBackend) Write(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refresh(); err != nil {
		return err
	}
	b.data[key] = json.RawMessage(slices.Clone(data))
	return b.flush()
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.refresh(); err != nil {
		return err
	}
	if _, ok := b.data[key]; !ok {
		return nil
	}
	delete(b.data, key)
	return b.flush()
}

// flush writes to a temp file and renames it over the target. Caller holds mu.
func (b *FileBackend) flush() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(b.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return err
	}
	if info, err := os.Stat(b.path); err == nil {
		b.modTime = info.ModTime()
	}
	return nil
}
