// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

// Cacher remembers recently used values. A value that was Put may be dropped
// at any time, so a miss never means the key was never seen.
type Cacher[K comparable, V any] interface {
	// Put stores [value] under [key], evicting the stalest entry when full.
	Put(key K, value V)
	// Get marks [key] as recently used.
	Get(key K) (V, bool)
	Evict(key K)
	Flush()
	Len() int
}
