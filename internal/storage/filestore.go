// Package storage implements the Database File Store (C2), the File Cache
// (C3), and the Search Cache (C7): the on-disk document layout and its two
// in-memory caching tiers.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/sarychdb/sarychdb/internal/apierrors"
	"github.com/sarychdb/sarychdb/internal/record"
)

// FileStore reads and writes database files as an ordered sequence of
// Records, one JSON array per file. Grounded on the teacher's atomic
// temp-file-then-rename write idiom, generalized from JSONL to a
// single-array document format.
type FileStore struct{}

// NewFileStore constructs a FileStore. It holds no state of its own; every
// operation is parameterized by the absolute path it is given.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads and parses the whole file at path. Returns NotFound if the
// file does not exist, Corrupt if it does not parse as a JSON array of
// objects, or IO on any other disk error.
func (fs *FileStore) Load(path string) (records []record.Record, sizeBytes int64, readMS int64, err error) {
	start := time.Now()
	data, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil, 0, 0, apierrors.NotFound("database file")
		}
		return nil, 0, 0, apierrors.IOError("failed to stat database file", statErr)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, apierrors.IOError("failed to read database file", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, 0, 0, apierrors.Corrupt(path)
	}

	out := make([]record.Record, len(decoded))
	for i, m := range decoded {
		out[i] = record.Record(m)
	}
	return out, data.Size(), time.Since(start).Milliseconds(), nil
}

// Save atomically replaces the file at path with records serialized as a
// JSON array: write to a sibling temp file, then rename into place, so a
// reader never observes a partially-written file.
func (fs *FileStore) Save(path string, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return apierrors.IOError("failed to marshal database", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return apierrors.IOError("failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup if rename fails

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apierrors.IOError("failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return apierrors.IOError("failed to close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apierrors.IOError("failed to rename temp file into place", err)
	}
	return nil
}

// Exists reports whether a database file exists at path.
func (fs *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Create writes an empty JSON array at path, failing if the file already
// exists. Used at database-creation time (§6 persisted state layout).
func (fs *FileStore) Create(path string) error {
	if fs.Exists(path) {
		return apierrors.Conflict("database file already exists")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apierrors.IOError("failed to create user directory", err)
	}
	return fs.Save(path, []record.Record{})
}
