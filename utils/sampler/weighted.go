// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

// Weighted defines how to sample a specified valued based on a provided
// weighted distribution
type Weighted interface {
	Initialize(weights []uint64) error
	// Sample returns the index whose cumulative weight range contains
	// [sampleValue].
	Sample(sampleValue uint64) (int, error)
}

// NewWeighted returns a new sampler
func NewWeighted() Weighted {
	return &weightedHeap{}
}
