// Package cache is a small in-process TTL cache.
package cache

import (
	"sync"
	"time"
)

const defaultTTL = time.Minute

// TTL maps keys to values that expire ttl after they were set. Expired
// entries are dropped lazily on Get and in bulk once the map passes maxLen.
type TTL[K comparable, V any] struct {
	mu     sync.RWMutex
	ttl    time.Duration
	maxLen int
	now    func() time.Time
	m      map[K]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[K comparable, V any](ttl time.Duration, maxLen int) *TTL[K, V] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TTL[K, V]{
		ttl:    ttl,
		maxLen: maxLen,
		now:    time.Now,
		m:      make(map[K]entry[V]),
	}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if now.After(e.exp) {
		c.mu.Lock()
		if cur, still := c.m[key]; still && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}
	return e.val, true
}

func (c *TTL[K, V]) Set(key K, val V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxLen > 0 && len(c.m) >= c.maxLen {
		c.pruneLocked(now)
		if len(c.m) >= c.maxLen {
			// still full of live entries
			c.m = make(map[K]entry[V])
		}
	}
	c.m[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
}

func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *TTL[K, V]) pruneLocked(now time.Time) {
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
}
