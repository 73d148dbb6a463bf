package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-backed byte cache with a TTL. It holds fetched document HTML
// so repeated runs against the same link do not hit the editor again.
// A nil *Cache is valid and never hits.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist. A ttl of zero disables it.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

func (c *Cache) file(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.path, fmt.Sprintf("%x", hash))
}

// Get returns the cached bytes for key if present and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	filePath := c.file(key)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data under key.
func (c *Cache) Set(key string, data []byte) error {
	if c == nil {
		return nil
	}
	if err := os.WriteFile(c.file(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were deleted.
func (c *Cache) Purge() (int, error) {
	return c.purge(false)
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	return c.purge(true)
}

func (c *Cache) purge(all bool) (int, error) {
	if c == nil {
		return 0, nil
	}
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if all || time.Since(info.ModTime()) > c.ttl {
			if err := os.Remove(filepath.Join(c.path, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
