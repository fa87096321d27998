package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"chordsheet/internal/atomicfile"
	"chordsheet/internal/model"
)

// Cache persists the library index between runs.
type Cache struct {
	path string
}

// NewCache creates a library index cache at a target path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

type payload struct {
	IndexedAt string        `json:"indexedAt"`
	Root      string        `json:"root"`
	Entries   []model.Entry `json:"entries"`
}

// Load reads cached entries and the library root they were indexed from.
// If the file does not exist, os.ErrNotExist is returned.
func (c *Cache) Load() ([]model.Entry, string, time.Time, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("parse library cache %s: %w", c.path, err)
	}

	var indexedAt time.Time
	if p.IndexedAt != "" {
		parsed, err := time.Parse(time.RFC3339, p.IndexedAt)
		if err != nil {
			return nil, "", time.Time{}, fmt.Errorf("parse indexedAt in library cache %s: %w", c.path, err)
		}
		indexedAt = parsed
	}

	return p.Entries, p.Root, indexedAt, nil
}

// Save writes the index atomically.
func (c *Cache) Save(root string, entries []model.Entry) error {
	p := payload{
		IndexedAt: time.Now().UTC().Format(time.RFC3339),
		Root:      root,
		Entries:   entries,
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal library cache: %w", err)
	}
	if err := atomicfile.WriteFile(c.path, b); err != nil {
		return fmt.Errorf("save library cache: %w", err)
	}
	return nil
}

// Invalidate removes the cache file. A missing file is not an error.
func (c *Cache) Invalidate() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove library cache %s: %w", c.path, err)
	}
	return nil
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}
