// Package blockcache implements the process-wide LRU cache of decoded data
// blocks, keyed by (sstable identity, block offset) so repeated point lookups
// against hot blocks skip the block-reader parse step.
package blockcache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/lsmcore/coredb/internal/block"
)

// DefaultCapacity is the default entry-count bound (not a byte budget).
const DefaultCapacity = 2048

// Interface is the contract both locking disciplines satisfy.
type Interface interface {
	Put(h Handle, r *block.Reader)
	Get(h Handle) (*block.Reader, bool)
	Remove(h Handle) bool
	Empty() bool
	Size() int
	Clear()
}

// Cache is a bounded LRU with no internal locking — for single-goroutine use,
// or when the caller already serializes access. Built directly on
// simplelru.LRU, the non-thread-safe core golang-lru/v2 itself wraps with a
// mutex; using it bare avoids paying for a lock this caller doesn't need.
type Cache struct {
	lru *simplelru.LRU[Handle, *block.Reader]
}

// NewCache returns a Cache with the given entry capacity (DefaultCapacity if
// capacity <= 0).
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	lru, err := simplelru.NewLRU[Handle, *block.Reader](capacity, nil)
	if err != nil {
		// Only returned for capacity <= 0, which cannot happen here.
		panic(err)
	}
	return &Cache{lru: lru}
}

func (c *Cache) Put(h Handle, r *block.Reader) { c.lru.Add(h, r) }

func (c *Cache) Get(h Handle) (*block.Reader, bool) { return c.lru.Get(h) }

func (c *Cache) Remove(h Handle) bool { return c.lru.Remove(h) }

func (c *Cache) Empty() bool { return c.lru.Len() == 0 }

func (c *Cache) Size() int { return c.lru.Len() }

func (c *Cache) Clear() { c.lru.Purge() }

// SyncCache wraps the same LRU core behind a sync.Mutex, for a cache shared
// by multiple reader goroutines.
type SyncCache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[Handle, *block.Reader]
}

// NewSyncCache returns a SyncCache with the given entry capacity
// (DefaultCapacity if capacity <= 0).
func NewSyncCache(capacity int) *SyncCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	lru, err := simplelru.NewLRU[Handle, *block.Reader](capacity, nil)
	if err != nil {
		panic(err)
	}
	return &SyncCache{lru: lru}
}

func (c *SyncCache) Put(h Handle, r *block.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(h, r)
}

func (c *SyncCache) Get(h Handle) (*block.Reader, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(h)
}

func (c *SyncCache) Remove(h Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(h)
}

func (c *SyncCache) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len() == 0
}

func (c *SyncCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *SyncCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

var (
	_ Interface = (*Cache)(nil)
	_ Interface = (*SyncCache)(nil)
)
