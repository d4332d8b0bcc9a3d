// Package cache implements the local TTL cache used to short-circuit reads
// against Secret Manager. Entries live in one flat JSON file keyed by
// "environment:name" and expire a fixed 300 seconds after they are written.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	kserrors "github.com/systmms/ksecret/internal/errors"
)

// TTL is the fixed lifetime of every cache entry.
const TTL = 300 * time.Second

const fileName = "cache.json"

// EnvFile overrides the cache file location when set.
const EnvFile = "KSECRET_CACHE_FILE"

type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache is an in-memory view of the cache file. It is not safe for
// concurrent processes: the last Save wins, silently discarding other
// writers' updates.
type Cache struct {
	path    string
	entries map[string]entry
	now     func() time.Time
}

// Path returns the cache file location: $KSECRET_CACHE_FILE when set,
// otherwise ~/.config/ksecret/cache.json.
func Path() (string, error) {
	if path := os.Getenv(EnvFile); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", kserrors.Wrap(kserrors.CachePersistence,
			"Could not determine home directory for the cache file",
			"Set "+EnvFile+" to an explicit cache path", err)
	}
	return filepath.Join(home, ".config", "ksecret", fileName), nil
}

// Load reads the whole cache file at the default location.
func Load() (*Cache, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the whole cache file at path. A missing or unparsable file
// yields an empty cache; only a failed read of an existing file is an error.
func LoadFrom(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]entry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, kserrors.Wrap(kserrors.CachePersistence,
			"Failed to read cache file "+path,
			"Check file permissions, or remove the file to reset the cache", err)
	}

	var doc struct {
		Entries map[string]entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Entries != nil {
		c.entries = doc.Entries
	}
	// Corrupt content degrades to an empty cache.
	return c, nil
}

func key(environment, name string) string {
	return environment + ":" + name
}

// Get returns the cached value if it has not expired. Expired entries are
// treated as misses but stay in the file until overwritten or cleared.
func (c *Cache) Get(environment, name string) (string, bool) {
	e, ok := c.entries[key(environment, name)]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.ExpiresAt) {
		return "", false
	}
	return e.Value, true
}

// Set stores a value with an expiry of now + TTL.
func (c *Cache) Set(environment, name, value string) {
	c.entries[key(environment, name)] = entry{
		Value:     value,
		ExpiresAt: c.now().Add(TTL),
	}
}

// Delete removes an entry.
func (c *Cache) Delete(environment, name string) {
	delete(c.entries, key(environment, name))
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save serializes the whole in-memory map and overwrites the cache file.
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return kserrors.Wrap(kserrors.CachePersistence,
			"Failed to create cache directory", "", err)
	}

	doc := struct {
		Entries map[string]entry `json:"entries"`
	}{Entries: c.entries}

	data, err := json.Marshal(doc)
	if err != nil {
		return kserrors.Wrap(kserrors.CachePersistence,
			"Failed to serialize cache", "", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return kserrors.Wrap(kserrors.CachePersistence,
			"Failed to write cache file "+c.path,
			"Check directory permissions", err)
	}
	return nil
}
