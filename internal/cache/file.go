package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the equipment detected in one photo.
type Entry struct {
	Equipment []string  `json:"equipment"`
	CachedAt  time.Time `json:"cached_at"`
}

// FileCache stores vision results on disk, one JSON file per photo, keyed by
// the sha256 of the image bytes.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a new file cache.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Key returns the cache key for an image.
func Key(image []byte) string {
	h := sha256.Sum256(image)
	return hex.EncodeToString(h[:])
}

// Get returns the cached equipment list if present and not expired.
func (c *FileCache) Get(key string) ([]string, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().Sub(entry.CachedAt) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Equipment, true
}

// Set stores the equipment detected for key.
func (c *FileCache) Set(key string, equipment []string) error {
	data, err := json.Marshal(&Entry{Equipment: equipment, CachedAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
