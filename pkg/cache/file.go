package cache

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists entries as flat files under root/<kind>/<key>.
// Writes go to a temp file in the same directory followed by a rename, so
// concurrent readers see either the old or the new payload, never a torn
// one. Concurrent writers to the same key race with last-writer-wins,
// which is acceptable because entries are immutable-by-replacement and
// idempotent to recompute.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates the store rooted at the given directory. The
// directory tree is created on first write, not here, so constructing a
// store never fails.
func NewFileStore(root string, logger *slog.Logger) *FileStore {
	return &FileStore{root: root, logger: logger}
}

func (s *FileStore) path(kind Kind, identity string) string {
	return filepath.Join(s.root, string(kind), Key(identity))
}

// Save persists the payload, replacing any prior entry. Failures are
// logged and swallowed.
func (s *FileStore) Save(kind Kind, identity string, payload []byte) {
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Warn("failed to create cache directory", "dir", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, "write-*")
	if err != nil {
		s.logger.Warn("failed to create cache temp file", "kind", kind, "identity", identity, "error", err)
		return
	}

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.logger.Warn("failed to write cache entry", "kind", kind, "identity", identity, "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Warn("failed to close cache temp file", "kind", kind, "identity", identity, "error", err)
		return
	}

	if err := os.Rename(tmp.Name(), s.path(kind, identity)); err != nil {
		_ = os.Remove(tmp.Name())
		s.logger.Warn("failed to replace cache entry", "kind", kind, "identity", identity, "error", err)
		return
	}

	s.logger.Debug("saved cache entry", "kind", kind, "identity", identity)
}

// Load reads the entry for an identity. A missing file is a Miss; an
// unreadable one is Failed. Both are valid, recomputable states.
func (s *FileStore) Load(kind Kind, identity string) ([]byte, State) {
	data, err := os.ReadFile(s.path(kind, identity))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Miss
		}
		s.logger.Warn("failed to read cache entry", "kind", kind, "identity", identity, "error", err)
		return nil, Failed
	}
	return data, Hit
}
