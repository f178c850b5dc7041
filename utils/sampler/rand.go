// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mathext/prng"
)

var globalRNG = newRNG()

func newRNG() *rng {
	// A cryptographically secure source isn't needed: peers can't influence
	// which of them are sampled.
	source := prng.NewMT19937()
	source.Seed(uint64(time.Now().UnixNano()))
	return &rng{rng: source}
}

// NewSource returns a deterministic MT19937 source seeded with [seed].
func NewSource(seed int64) Source {
	source := prng.NewMT19937()
	source.Seed(uint64(seed))
	return source
}

type rng struct {
	lock sync.Mutex
	rng  Source
}

type Source interface {
	// Uint64 returns a random number in [0, MaxUint64] and advances the
	// generator's state.
	Uint64() uint64
}

// Uint64Inclusive returns a pseudo-random number in [0,n].
func (r *rng) Uint64Inclusive(n uint64) uint64 {
	switch {
	// n+1 is a power of two, so masking is uniform. This includes
	// n == MaxUint64 because n+1 overflows to 0.
	case n&(n+1) == 0:
		return r.uint64() & n

	// n is larger than MaxInt64, so rejection sampling over the full range
	// terminates quickly.
	case n > math.MaxInt64:
		v := r.uint64()
		for v > n {
			v = r.uint64()
		}
		return v

	// Draw from [0, k*(n+1)) for the largest k where k*(n+1) <= MaxInt64+1 so
	// that the modulo is unbiased.
	default:
		maximum := (1 << 63) - 1 - (1<<63)%(n+1)
		v := r.uint63()
		for v > maximum {
			v = r.uint63()
		}
		return v % (n + 1)
	}
}

// uint63 returns a random number in [0, MaxInt64]
func (r *rng) uint63() uint64 {
	return r.uint64() & math.MaxInt64
}

// uint64 returns a random number in [0, MaxUint64]
func (r *rng) uint64() uint64 {
	r.lock.Lock()
	n := r.rng.Uint64()
	r.lock.Unlock()
	return n
}
