// Package cache provides the bounded FIFO cache that owns fetched
// stream handles until playback claims them or eviction releases them.
package cache

import (
	"io"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/domain/resource"
)

// DefaultCapacity bounds the number of resident entries when no
// explicit capacity is configured.
const DefaultCapacity = 3

// Cache is a fixed-capacity FIFO of playlist items. While an item is
// resident its stream handle belongs to the cache and eviction closes
// it; Claim moves the handle out without closing it. All mutations are
// serialized internally because the play path and the background
// preload both enqueue here.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    []*resource.Item
}

// New creates a cache holding at most capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity}
}

// Enqueue inserts item at the tail. Re-enqueueing a resident item is a
// no-op, so repeats of the same item share a single entry. Oldest
// entries are evicted and released until the capacity bound holds.
func (c *Cache) Enqueue(item *resource.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, resident := range c.items {
		if resident == item {
			return
		}
	}
	c.items = append(c.items, item)

	for len(c.items) > c.capacity {
		oldest := c.items[0]
		c.items = c.items[1:]
		c.releaseLocked(oldest)
		zlog.Debug().Msgf("cache: evicted oldest entry: item=%s resident=%d", oldest.Name, len(c.items))
	}
}

// Claim hands the item's stream handle over to the caller. The FIFO
// entry stays for insertion-order accounting, but the cache gives up
// ownership: a later eviction of the entry releases nothing. Returns
// nil when the item holds no stream.
func (c *Cache) Claim(item *resource.Item) io.ReadSeekCloser {
	c.mu.Lock()
	defer c.mu.Unlock()

	return item.TakeStream()
}

// Clear evicts and releases every entry in insertion order.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, resident := range c.items {
		c.releaseLocked(resident)
	}
	c.items = nil
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Contains reports whether item is resident.
func (c *Cache) Contains(item *resource.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, resident := range c.items {
		if resident == item {
			return true
		}
	}
	return false
}

// releaseLocked closes the entry's stream if the cache still owns one.
// Close failures are logged and swallowed: eviction is background
// cleanup and must never fail the operation that triggered it.
func (c *Cache) releaseLocked(item *resource.Item) {
	stream := item.TakeStream()
	if stream == nil {
		return
	}
	if err := stream.Close(); err != nil {
		zlog.Warn().Msgf("cache: failed to close released stream: item=%s error=%v", item.Name, err)
	}
}
