package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"taskcal/internal/task"
)

// DefaultKey is the blob key the collection is stored under.
const DefaultKey = "tasks"

// BlobStore is a durable key/value store for serialized collections.
// Load returns nil, nil when nothing has been saved under key yet.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// Adapter loads and saves the whole task collection through a BlobStore.
type Adapter struct {
	store BlobStore
	key   string
	log   zerolog.Logger
}

func NewAdapter(store BlobStore, log zerolog.Logger) *Adapter {
	return &Adapter{store: store, key: DefaultKey, log: log}
}

// Load never fails: a missing, unreadable or corrupt blob yields an empty
// collection.
func (a *Adapter) Load(ctx context.Context) []task.Task {
	blob, err := a.store.Load(ctx, a.key)
	if err != nil {
		a.log.Warn().Err(err).Str("key", a.key).Msg("load tasks failed, starting empty")
		return nil
	}
	if len(blob) == 0 {
		return nil
	}
	tasks, dropped, err := decode(blob)
	if err != nil {
		a.log.Warn().Err(err).Str("key", a.key).Msg("stored tasks unreadable, starting empty")
		return nil
	}
	if dropped > 0 {
		a.log.Warn().Int("dropped", dropped).Str("key", a.key).Msg("damaged task records dropped")
	}
	a.log.Debug().Int("tasks", len(tasks)).Msg("tasks loaded")
	return tasks
}

// Save overwrites the stored blob with the full collection.
func (a *Adapter) Save(ctx context.Context, tasks []task.Task) error {
	blob, err := Encode(tasks)
	if err != nil {
		return err
	}
	return a.store.Save(ctx, a.key, blob)
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open builds the blob store for backend. The returned close func is never
// nil.
func Open(backend, dbPath, dataFile string) (BlobStore, func() error, error) {
	switch backend {
	case "", BackendSQLite:
		s, err := OpenSQLite(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
		}
		return s, s.Close, nil
	case BackendFile:
		s, err := NewFileStore(dataFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open data file %s: %w", dataFile, err)
		}
		return s, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}
