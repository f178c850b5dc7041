// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import "sync"

// Atomic guards a value of type T with a read-write lock.
type Atomic[T any] struct {
	lock  sync.RWMutex
	value T
}

func NewAtomic[T any](value T) *Atomic[T] {
	return &Atomic[T]{
		value: value,
	}
}

func (a *Atomic[T]) Get() T {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.value
}

func (a *Atomic[T]) Set(value T) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.value = value
}

// Swap sets the value and returns the previous one.
func (a *Atomic[T]) Swap(value T) T {
	a.lock.Lock()
	defer a.lock.Unlock()

	old := a.value
	a.value = value
	return old
}
