// Package namecache persists the mapping from a requested font to the name
// under which it was installed in the runtime font table.
//
// The mapping lives in a single JSON object keyed by [font.Font.Key]. It is
// read lazily on first use and rewritten in full, atomically, on every
// [Cache.Record]. A missing or unreadable file is an empty mapping.
package namecache

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/observability"
)

// Entry is one recorded font.
type Entry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Cache is a lazily loaded, file-backed font name dictionary. It is safe for
// concurrent use; concurrent writers are last-writer-wins.
type Cache struct {
	path   string
	logger *log.Logger

	mu     sync.RWMutex
	names  map[string]string
	loaded bool

	// persistMu orders file writes the same way as snapshot updates.
	persistMu sync.Mutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Cache backed by the file at path. Nothing is read until the
// first lookup.
func New(path string, opts ...Option) *Cache {
	c := &Cache{path: path, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the backing file.
func (c *Cache) Path() string {
	return c.path
}

// Resolve returns the runtime name recorded for f.
func (c *Cache) Resolve(f font.Font) (string, bool) {
	c.ensureLoaded()

	c.mu.RLock()
	name, ok := c.names[f.Key()]
	c.mu.RUnlock()

	if ok {
		observability.Cache().OnCacheHit(context.Background(), "names")
	} else {
		observability.Cache().OnCacheMiss(context.Background(), "names")
	}
	return name, ok
}

// Record stores name for f and persists the whole mapping. The in-memory
// snapshot is updated even when persisting fails, so a later Resolve in this
// process sees the name either way. It reports whether the file was written.
func (c *Cache) Record(f font.Font, name string) bool {
	c.ensureLoaded()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.names[f.Key()] = name
	data, err := json.MarshalIndent(c.names, "", "  ")
	c.mu.Unlock()

	if err == nil {
		err = c.write(data)
	}
	if err != nil {
		c.logger.Warn("name cache not persisted", "font", f.Key(), "path", c.path, "err", err)
		return false
	}
	observability.Cache().OnCacheSet(context.Background(), "names", len(data))
	c.logger.Debug("recorded font name", "font", f.Key(), "name", name)
	return true
}

// Entries returns a copy of the mapping sorted by key.
func (c *Cache) Entries() []Entry {
	c.ensureLoaded()

	c.mu.RLock()
	entries := make([]Entry, 0, len(c.names))
	for k, v := range c.names {
		entries = append(entries, Entry{Key: k, Name: v})
	}
	c.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })
	return entries
}

// Clear empties the mapping and removes the backing file.
func (c *Cache) Clear() error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	c.names = map[string]string{}
	c.loaded = true
	c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) ensureLoaded() {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.names = c.load()
	c.loaded = true
}

func (c *Cache) load() map[string]string {
	names := map[string]string{}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("name cache unreadable, starting empty", "path", c.path, "err", err)
		}
		return names
	}
	if err := json.Unmarshal(data, &names); err != nil {
		c.logger.Warn("name cache corrupt, starting empty", "path", c.path, "err", err)
		return map[string]string{}
	}
	if names == nil {
		names = map[string]string{}
	}
	return names
}

// write replaces the backing file with data via a temp file in the same
// directory and a rename.
func (c *Cache) write(data []byte) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".names-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
