package texture

import (
	"sync"

	"tinyrender/internal/logging"
)

// Resolver resolves a texture name to a decoded texture, or nil.
type Resolver interface {
	Resolve(texName string) *Texture
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Texture // nil value: load attempted and failed
	index *Index
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*Texture),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found or
// not decodable.
func (c *Cache) Resolve(texName string) *Texture {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if tex, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return tex
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	tex, err := LoadTexture(path)
	if err != nil {
		logging.Logger().Warn("texture load failed", "path", path, "error", err)
	} else {
		w, h := tex.Size()
		logging.Logger().Debug("texture loaded", "path", path, "width", w, "height", h)
	}

	// Write lock with double-check
	c.mu.Lock()
	if existing, exists := c.items[path]; exists {
		c.mu.Unlock()
		return existing
	}
	c.items[path] = tex
	c.mu.Unlock()

	return tex
}
