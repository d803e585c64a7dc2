package cache

import "sync"

// LRU is a size-bounded cache evicting the least recently used entry.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	index   map[K]*node[K, V]
	order   recency[K, V]
	limit   int
	onEvict func(K, V)

	hits   uint64
	misses uint64
}

// NewLRU creates a cache holding at most limit entries.
// A limit <= 0 means unbounded.
func NewLRU[K comparable, V any](limit int) *LRU[K, V] {
	return &LRU[K, V]{
		index: make(map[K]*node[K, V]),
		limit: limit,
	}
}

// OnEvict registers fn to be called, with the lock held, for every entry
// dropped because the cache is full. Entries removed by Delete or Clear
// are not reported.
func (c *LRU[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.touch(n)
	return n.value, true
}

// Set stores value under key, evicting the least recent entry if the
// cache grows past its limit.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.index[key]; ok {
		n.value = value
		c.order.touch(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.index[key] = n
	c.order.pushFront(n)

	for c.limit > 0 && c.order.len() > c.limit {
		old := c.order.back()
		c.order.remove(old)
		delete(c.index, old.key)
		if c.onEvict != nil {
			c.onEvict(old.key, old.value)
		}
	}
}

// GetOrLoad returns the cached value for key or calls load to produce it.
// Failed loads are not cached. load runs without the lock held, so two
// concurrent misses on the same key may both load.
func (c *LRU[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.index[key]
	if !ok {
		return false
	}
	c.order.remove(n)
	delete(c.index, key)
	return true
}

// Clear removes every entry. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.index)
	c.order.reset()
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.len()
}

// Stats returns current size and hit counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: c.order.len(), Limit: c.limit, Hits: c.hits, Misses: c.misses}
}

// Stats describes an LRU.
type Stats struct {
	Len    int
	Limit  int
	Hits   uint64
	Misses uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
