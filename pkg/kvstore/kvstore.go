package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by repositories when no record matches an ID.
var ErrNotFound = errors.New("kvstore: record not found")

// ErrVersionConflict is returned when a save races with another writer.
// The caller read a collection at one version and the file has moved on
// since, typically because a second process shares the data directory.
var ErrVersionConflict = errors.New("kvstore: collection version conflict")

// Store persists named collections as JSON files under a data directory.
// Every collection is written whole: load, mutate, save. Saves are
// versioned so a stale writer fails instead of silently clobbering a
// newer file, and the file is replaced atomically via rename.
type Store struct {
	dir      string
	logger   *zap.Logger
	observer Observer

	mu sync.Mutex
}

// Observer receives the duration of every load and save, keyed by
// collection name and operation ("load" or "save").
type Observer func(collection, operation string, elapsed time.Duration)

type envelope struct {
	Version int64           `json:"version"`
	Records json.RawMessage `json:"records"`
}

// Open ensures the data directory exists and returns a store handle.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		dir = "./data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the backing directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SetObserver installs an optional timing hook. Call before the store
// is shared between goroutines.
func (s *Store) SetObserver(fn Observer) {
	s.observer = fn
}

func (s *Store) observe(collection, operation string, start time.Time) {
	if s.observer != nil {
		s.observer(collection, operation, time.Since(start))
	}
}

// Load reads the collection stored under key into out and returns the
// version to pass to the next Save. A missing file yields version 0 and
// leaves out at its zero value. A corrupt file is treated the same way:
// logged and loaded as empty, never surfaced as an error to read paths.
func (s *Store) Load(key string, out interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.observe(key, "load", time.Now())
	return s.loadLocked(key, out)
}

func (s *Store) loadLocked(key string, out interface{}) (int64, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read collection %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("collection file corrupt, loading as empty",
			zap.String("collection", key), zap.Error(err))
		return 0, nil
	}
	if len(env.Records) > 0 {
		if err := json.Unmarshal(env.Records, out); err != nil {
			s.logger.Warn("collection records corrupt, loading as empty",
				zap.String("collection", key), zap.Error(err))
			return 0, nil
		}
	}
	return env.Version, nil
}

// Save serialises records and replaces the collection file. version must
// equal the version obtained from the preceding Load; when the on-disk
// file has advanced past it the write is refused with ErrVersionConflict.
// The new version is returned on success.
func (s *Store) Save(key string, version int64, records interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.observe(key, "save", time.Now())

	current, err := s.currentVersion(key)
	if err != nil {
		return 0, err
	}
	if current != version {
		return 0, fmt.Errorf("%w: collection %s is at v%d, writer read v%d",
			ErrVersionConflict, key, current, version)
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("encode collection %s: %w", key, err)
	}
	next := version + 1
	data, err := json.Marshal(envelope{Version: next, Records: raw})
	if err != nil {
		return 0, fmt.Errorf("encode collection envelope %s: %w", key, err)
	}

	if err := s.writeAtomic(key, data); err != nil {
		return 0, err
	}
	return next, nil
}

// currentVersion reads only the envelope version; a missing or corrupt
// file counts as version 0 so the next save recreates it.
func (s *Store) currentVersion(key string) (int64, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read collection %s: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, nil
	}
	return env.Version, nil
}

func (s *Store) writeAtomic(key string, data []byte) error {
	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("sync collection %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close collection %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace collection %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
