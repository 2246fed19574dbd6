package chunk

import (
	"container/list"
	"sync"
)

// Cache memoises a Generator per chunk key. With Limit == 0 entries live for
// the whole session; a positive Limit evicts the least recently used key.
type Cache struct {
	gen   *Generator
	limit int

	mu      sync.Mutex
	entries map[Key]*list.Element
	order   *list.List // front = most recently used
	hits    int
	misses  int
}

type cacheEntry struct {
	key    Key
	planes []PlaneData
}

func NewCache(gen *Generator, limit int) *Cache {
	return &Cache{
		gen:     gen,
		limit:   max(limit, 0),
		entries: make(map[Key]*list.Element),
		order:   list.New(),
	}
}

// Planes returns the layout of c, generating it on first use. The returned
// slice is shared and must not be modified.
func (cache *Cache) Planes(c Coord) []PlaneData {
	key := c.Key()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if el, ok := cache.entries[key]; ok {
		cache.hits++
		cache.order.MoveToFront(el)
		return el.Value.(*cacheEntry).planes
	}

	cache.misses++
	planes := cache.gen.Generate(c)
	cache.entries[key] = cache.order.PushFront(&cacheEntry{key: key, planes: planes})

	if cache.limit > 0 {
		for cache.order.Len() > cache.limit {
			oldest := cache.order.Back()
			cache.order.Remove(oldest)
			delete(cache.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return planes
}

func (cache *Cache) Has(c Coord) bool {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	_, ok := cache.entries[c.Key()]
	return ok
}

func (cache *Cache) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.order.Len()
}

// Stats returns lookup counters since creation.
func (cache *Cache) Stats() (hits, misses int) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.hits, cache.misses
}
