// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linked

import "github.com/ava-labs/avalanche-consensus/utils"

type entry[K comparable, V any] struct {
	key   K
	value V

	prev, next *entry[K, V]
	removed    bool
}

// Hashmap provides an ordered O(1) mapping from keys to values.
//
// Entries are tracked by insertion order.
type Hashmap[K comparable, V any] struct {
	entryMap map[K]*entry[K, V]

	// head is the oldest entry and tail the newest.
	head, tail *entry[K, V]
}

func NewHashmap[K comparable, V any]() *Hashmap[K, V] {
	return NewHashmapWithSize[K, V](0)
}

func NewHashmapWithSize[K comparable, V any](initialSize int) *Hashmap[K, V] {
	return &Hashmap[K, V]{
		entryMap: make(map[K]*entry[K, V], initialSize),
	}
}

// Put sets [key] to [value]. Updating an existing key keeps its position.
func (lh *Hashmap[K, V]) Put(key K, value V) {
	if e, ok := lh.entryMap[key]; ok {
		e.value = value
		return
	}

	e := &entry[K, V]{
		key:   key,
		value: value,
		prev:  lh.tail,
	}
	if lh.tail != nil {
		lh.tail.next = e
	} else {
		lh.head = e
	}
	lh.tail = e
	lh.entryMap[key] = e
}

func (lh *Hashmap[K, V]) Get(key K) (V, bool) {
	if e, ok := lh.entryMap[key]; ok {
		return e.value, true
	}
	return utils.Zero[V](), false
}

// Delete removes [key] and reports whether it was present.
func (lh *Hashmap[K, V]) Delete(key K) bool {
	e, ok := lh.entryMap[key]
	if !ok {
		return false
	}
	delete(lh.entryMap, key)

	if e.prev != nil {
		e.prev.next = e.next
	} else {
		lh.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		lh.tail = e.prev
	}
	// e.next is left intact so that iterators positioned on e can advance.
	e.removed = true
	e.prev = nil
	return true
}

func (lh *Hashmap[K, V]) Clear() {
	for e := lh.head; e != nil; e = e.next {
		e.removed = true
	}
	lh.entryMap = make(map[K]*entry[K, V])
	lh.head = nil
	lh.tail = nil
}

func (lh *Hashmap[K, V]) Len() int {
	return len(lh.entryMap)
}

func (lh *Hashmap[K, V]) Oldest() (K, V, bool) {
	if lh.head == nil {
		return utils.Zero[K](), utils.Zero[V](), false
	}
	return lh.head.key, lh.head.value, true
}

func (lh *Hashmap[K, V]) Newest() (K, V, bool) {
	if lh.tail == nil {
		return utils.Zero[K](), utils.Zero[V](), false
	}
	return lh.tail.key, lh.tail.value, true
}

// NewIterator returns an iterator over the map from oldest to newest. Entries
// added after the iterator was created are visited if they are reached before
// the iterator is exhausted.
func (lh *Hashmap[K, V]) NewIterator() *Iterator[K, V] {
	return &Iterator[K, V]{lh: lh}
}

// Iterator walks a Hashmap in insertion order.
//
// Deleting the entry the iterator is positioned on is supported. Other
// deletions during iteration may cause later insertions to be skipped.
type Iterator[K comparable, V any] struct {
	lh      *Hashmap[K, V]
	last    *entry[K, V]
	started bool
	key     K
	value   V
}

func (it *Iterator[K, V]) Next() bool {
	var next *entry[K, V]
	if it.started {
		next = it.last.next
	} else {
		next = it.lh.head
	}
	for next != nil && next.removed {
		next = next.next
	}

	if next == nil {
		it.key = utils.Zero[K]()
		it.value = utils.Zero[V]()
		return false
	}

	it.last = next
	it.started = true
	it.key = next.key
	it.value = next.value
	return true
}

func (it *Iterator[K, V]) Key() K {
	return it.key
}

func (it *Iterator[K, V]) Value() V {
	return it.value
}
