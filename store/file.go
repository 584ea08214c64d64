package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const fileExt = ".json"

// FileStore keeps one JSON file per user identity under a single directory.
// Saves are atomic: the record is written to a temp file in the same
// directory and renamed over the target, so a crash mid-write never leaves a
// partially persisted conversation behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a file-backed
// store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dialog dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a user identity to its durable unit. Identities are
// percent-escaped so arbitrary identities (including path separators)
// stay confined to one file name each.
func (s *FileStore) path(userID string) string {
	return filepath.Join(s.dir, url.PathEscape(userID)+fileExt)
}

// Load reads the record for userID if its file exists.
func (s *FileStore) Load(userID string) (Record, bool, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read record for %s: %w", userID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode record for %s: %w", userID, err)
	}
	return rec, true, nil
}

// LoadAll reads every record file in the directory.
func (s *FileStore) LoadAll() (map[string]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list dialog dir %s: %w", s.dir, err)
	}
	out := make(map[string]Record)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		userID, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		rec, ok, err := s.Load(userID)
		if err != nil {
			return nil, err
		}
		if ok {
			out[userID] = rec
		}
	}
	return out, nil
}

// Save rewrites the record file for userID wholesale via temp file + rename.
func (s *FileStore) Save(userID string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", userID, err)
	}
	tmp, err := os.CreateTemp(s.dir, "record-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record for %s: %w", userID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close record for %s: %w", userID, err)
	}
	if err := os.Rename(tmpName, s.path(userID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit record for %s: %w", userID, err)
	}
	return nil
}

// Delete removes the record file for userID; a missing file is not an error.
func (s *FileStore) Delete(userID string) error {
	if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record for %s: %w", userID, err)
	}
	return nil
}
