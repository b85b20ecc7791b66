// Package lintcache remembers which files were clean on the last run so an
// unchanged file is not parsed again.
//
// Only clean files are recorded. A file with any finding, at any severity,
// is always linted again so its diagnostics can be reported. The whole cache
// is discarded when the schema version or the rule settings change.
package lintcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// SchemaVersion is bumped when the cache format or rule output changes.
const SchemaVersion = 1

// FileName is the default cache file name, placed next to the config file.
const FileName = ".tsprefer-cache"

// Cache represents the on-disk lint cache.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash is the digest of the rule settings the results were
	// produced with.
	ConfigHash string `json:"configHash"`

	// Clean maps file paths to the SHA-256 of the content that produced no
	// findings.
	Clean map[string]string `json:"clean"`

	mu sync.Mutex
}

// CachePath returns the cache file path. An explicit path wins; otherwise
// the cache lives next to the config file, or in dir when there is none.
func CachePath(explicit, configPath, dir string) string {
	if explicit != "" {
		if !filepath.IsAbs(explicit) && configPath != "" {
			return filepath.Join(filepath.Dir(configPath), explicit)
		}
		return explicit
	}
	if configPath != "" {
		return filepath.Join(filepath.Dir(configPath), FileName)
	}
	return filepath.Join(dir, FileName)
}

// Load reads and parses a cache file from disk.
// Returns nil if the file doesn't exist, is unreadable, or is invalid JSON.
// Callers should treat nil as a cache miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	if c.Clean == nil {
		c.Clean = make(map[string]string)
	}

	return &c
}

// Save writes the cache to disk atomically (write to temp, rename).
// A failed save only costs the next run its cache hits.
func Save(path string, cache *Cache) error {
	cache.mu.Lock()
	data, err := json.Marshal(cache, json.Deterministic(true), jsontext.WithIndent("  "))
	cache.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// IsValid checks whether the cache can be trusted:
//
//  1. Schema version matches (catches binary upgrades)
//  2. Rule settings hash matches the current config
func (c *Cache) IsValid(currentConfigHash string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion {
		return false
	}
	return c.ConfigHash == currentConfigHash
}

// IsClean reports whether path was clean with exactly this content.
func (c *Cache) IsClean(path, content string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sum, ok := c.Clean[path]
	return ok && sum == HashContent(content)
}

// Record stores the outcome of linting path. Files with findings are
// forgotten.
func (c *Cache) Record(path, content string, clean bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if clean {
		c.Clean[path] = HashContent(content)
	} else {
		delete(c.Clean, path)
	}
}

// Len returns the number of files recorded clean.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Clean)
}

// HashContent computes the SHA-256 hex digest of content.
func HashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// New creates an empty Cache with the current schema version.
func New(configHash string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		Clean:      make(map[string]string),
	}
}

// Open loads the cache at path and returns it if still valid for
// configHash, or a fresh empty cache otherwise.
func Open(path, configHash string) *Cache {
	if c := Load(path); c.IsValid(configHash) {
		return c
	}
	return New(configHash)
}
