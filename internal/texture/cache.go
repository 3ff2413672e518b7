package texture

import (
	"image"
	"os"
	"sync"
	"time"
)

// Cache keeps decoded plates by path and reloads a plate when its file
// changes on disk.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
}

type cacheEntry struct {
	img     *image.NRGBA
	modTime time.Time
	size    int64
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]*cacheEntry)}
}

// Get returns the plate at path, decoding it on first use or after the file
// was modified. A failed reload keeps serving the previous image.
func (c *Cache) Get(path string) (*image.NRGBA, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.mu.RLock()
		entry, ok := c.items[path]
		c.mu.RUnlock()
		if ok {
			return entry.img, nil
		}
		return nil, err
	}

	// Fast path: read lock
	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.img, nil
	}

	img, err := LoadPlate(path)
	if err != nil {
		if ok {
			return entry.img, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.items[path] = &cacheEntry{img: img, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()
	return img, nil
}

// Len returns the number of cached plates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
