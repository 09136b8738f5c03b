package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// FileStore keeps blobs as JSON files next to path, the plain-file
// alternative to SQLiteStore.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the collection in path. The parent directory is
// created when missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

// fileFor maps a key onto a file. The default key uses path as given.
func (f *FileStore) fileFor(key string) string {
	if key == DefaultKey {
		return f.path
	}
	ext := filepath.Ext(f.path)
	return f.path[:len(f.path)-len(ext)] + "." + key + ext
}

func (f *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.fileFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Save replaces the file atomically: the blob is synced to a temp file
// that is then renamed over the target.
func (f *FileStore) Save(_ context.Context, key string, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.fileFor(key)
	if err := renameio.WriteFile(target, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
