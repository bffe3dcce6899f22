package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/concertarchive/nyc-crawler/internal/concert"
)

// DefaultCorpusPath is where the concert corpus lives unless configured.
const DefaultCorpusPath = "data.json"

// CorpusStore reads and writes the concert archive file. Merging is the
// caller's job (concert.Merge); the store only moves bytes.
type CorpusStore struct {
	path string
}

// NewCorpusStore builds a CorpusStore for the given path.
func NewCorpusStore(path string) *CorpusStore {
	if path == "" {
		path = DefaultCorpusPath
	}
	return &CorpusStore{path: path}
}

// Load reads the archive. A missing file yields an empty archive, not an
// error.
func (s *CorpusStore) Load() (concert.Archive, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return concert.Archive{}, nil
		}
		return concert.Archive{}, fmt.Errorf("read corpus: %w", err)
	}
	var archive concert.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return concert.Archive{}, fmt.Errorf("parse corpus: %w", err)
	}
	return archive, nil
}

// Save writes the archive back to disk.
func (s *CorpusStore) Save(archive concert.Archive) error {
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}
