// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"

	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/linked"
)

var _ Cacher[struct{}, struct{}] = (*LRU[struct{}, struct{}])(nil)

// LRU is a key value store with bounded size. If the size is attempted to be
// exceeded, then an element is removed from the cache before the insertion is
// done, based on evicting the least recently used value.
type LRU[K comparable, V any] struct {
	lock     sync.Mutex
	elements *linked.Hashmap[K, V]
	// If set to <= 0, will be set internally to 1.
	Size int
}

func (c *LRU[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.resize()

	// Re-inserting moves the key to the newest position.
	c.elements.Delete(key)
	if c.elements.Len() == c.Size {
		oldestKey, _, _ := c.elements.Oldest()
		c.elements.Delete(oldestKey)
	}
	c.elements.Put(key, value)
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.resize()

	val, ok := c.elements.Get(key)
	if !ok {
		return utils.Zero[V](), false
	}
	c.elements.Delete(key)
	c.elements.Put(key, val)
	return val, true
}

func (c *LRU[K, _]) Evict(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.resize()

	c.elements.Delete(key)
}

func (c *LRU[_, _]) Flush() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.resize()

	c.elements.Clear()
}

func (c *LRU[_, _]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.resize()

	return c.elements.Len()
}

func (c *LRU[K, V]) resize() {
	if c.elements == nil {
		c.elements = linked.NewHashmap[K, V]()
	}
	if c.Size <= 0 {
		c.Size = 1
	}
	for c.elements.Len() > c.Size {
		oldestKey, _, _ := c.elements.Oldest()
		c.elements.Delete(oldestKey)
	}
}
