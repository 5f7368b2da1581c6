// Package assets resolves asset paths against a list of search roots and
// caches the loaded bytes.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when no root contains the requested path.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset loading from directories.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager searching the given roots.
func NewManager(roots ...string) *Manager {
	m := &Manager{cache: NewCache()}
	m.cache.SetLimit(DefaultCacheBytes)
	for _, r := range roots {
		m.AddRoot(r)
	}
	return m
}

// AddRoot adds a directory to the search list.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
}

// Roots returns the configured search roots.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Resolve returns the first existing filesystem path for an asset.
// Absolute paths are returned unchanged when they exist.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], filepath.FromSlash(path))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if len(m.roots) == 0 {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: %w", path, ErrNotFound)
}

// Load loads a file from the roots.
func (m *Manager) Load(path string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	m.cache.Set(path, data)
	return data, nil
}

// Invalidate drops a cached entry, e.g. after the file changed on disk.
func (m *Manager) Invalidate(path string) {
	m.cache.Delete(path)
}

// SetCacheLimit sets the byte budget of the cache. Zero disables the limit.
func (m *Manager) SetCacheLimit(bytes int64) {
	m.cache.SetLimit(bytes)
}

// Cache returns the underlying byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// DefaultCacheBytes is the cache budget of a new Manager.
const DefaultCacheBytes = 64 << 20

// Cache is an in-memory byte cache with an optional size budget. When the
// budget is exceeded the oldest entries are evicted first.
type Cache struct {
	data  map[string][]byte
	order []string // keys, oldest first
	size  int64
	limit int64 // 0 means unlimited
	mu    sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new unlimited cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// SetLimit sets the byte budget and evicts down to it. Zero disables the limit.
func (c *Cache) SetLimit(limit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = limit
	c.evict()
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache. Items larger than the whole budget are not kept.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
	if c.limit > 0 && int64(len(data)) > c.limit {
		return
	}
	c.data[key] = data
	c.size += int64(len(data))
	c.order = append(c.order, key)
	c.evict()
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

func (c *Cache) remove(key string) {
	old, ok := c.data[key]
	if !ok {
		return
	}
	c.size -= int64(len(old))
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache) evict() {
	for c.limit > 0 && c.size > c.limit && len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Size returns the total bytes held.
func (c *Cache) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.order = nil
	c.size = 0
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
