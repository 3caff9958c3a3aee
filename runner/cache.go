package runner

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFile = "cstfix_cache.gob"

type cacheEntry struct {
	Hash      string
	CreatedAt time.Time
}

// Cache remembers files that a rule set left untouched, keyed by path. An
// entry is only valid for the exact content and rule key it was stored with.
type Cache struct {
	Dir     string
	entries map[string]cacheEntry
	mutex   sync.RWMutex
	maxAge  time.Duration
}

// NewCache opens the cache stored in dir, creating dir when needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		Dir:     dir,
		entries: make(map[string]cacheEntry),
		maxAge:  7 * 24 * time.Hour,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.Dir, cacheFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	file, err := os.Create(filepath.Join(c.Dir, cacheFile))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Set records that content of filename is unchanged under key.
func (c *Cache) Set(filename, key string, content []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[filename] = cacheEntry{
		Hash:      hash(key, content),
		CreatedAt: time.Now(),
	}
}

// Unchanged reports whether filename was recorded with this content and key.
func (c *Cache) Unchanged(filename, key string, content []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[filename]
	if !ok {
		return false
	}
	if time.Since(entry.CreatedAt) > c.maxAge || entry.Hash != hash(key, content) {
		delete(c.entries, filename)
		return false
	}
	return true
}

func (c *Cache) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = d
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
}

func hash(key string, content []byte) string {
	h := md5.New()
	h.Write([]byte(key))
	h.Write([]byte{0})
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil))
}
