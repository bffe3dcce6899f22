// Package store persists the two on-disk artifacts of a run: the year→id
// mapping cache and the concert corpus. The two files are independent by
// design; a failed corpus write never invalidates a cache write.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultCachePath is where the mapping cache lives unless configured.
const DefaultCachePath = "concert_ids.json"

// MappingCache maps concert years to their catalog identifiers. Once a
// mapping is recorded it is treated as authoritative and future lookups
// short-circuit scanning entirely.
type MappingCache struct {
	path     string
	mappings map[string]int
	dirty    bool
}

type mappingFile struct {
	Mappings    map[string]int `json:"mappings"`
	LastUpdated string         `json:"last_updated"`
}

// LoadMappingCache reads the cache file. A missing file is not an error; it
// yields an empty cache.
func LoadMappingCache(path string) (*MappingCache, error) {
	if path == "" {
		path = DefaultCachePath
	}
	c := &MappingCache{path: path, mappings: map[string]int{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read mapping cache: %w", err)
	}
	var file mappingFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse mapping cache: %w", err)
	}
	if file.Mappings != nil {
		c.mappings = file.Mappings
	}
	return c, nil
}

// Lookup returns the cached identifier for a year.
func (c *MappingCache) Lookup(year int) (int, bool) {
	id, ok := c.mappings[strconv.Itoa(year)]
	return id, ok
}

// Record stores a year→id association in memory only. Persist must be called
// to write it back.
func (c *MappingCache) Record(year, id int) {
	c.mappings[strconv.Itoa(year)] = id
	c.dirty = true
}

// Dirty reports whether Record has been called since load/persist. Callers
// use it to skip the write-back on a pure cache hit.
func (c *MappingCache) Dirty() bool {
	return c.dirty
}

// Len returns the number of cached mappings.
func (c *MappingCache) Len() int {
	return len(c.mappings)
}

// Persist writes the cache back to disk with a fresh last_updated stamp.
func (c *MappingCache) Persist() error {
	file := mappingFile{
		Mappings:    c.mappings,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write mapping cache: %w", err)
	}
	c.dirty = false
	return nil
}
