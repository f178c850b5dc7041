// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import "errors"

var ErrOutOfRange = errors.New("out of range")

// Uniform samples values without replacement in the provided range
type Uniform interface {
	Initialize(sampleRange uint64)
	// Sample returns length many distinct values in the sample range.
	Sample(length int) ([]uint64, error)

	Reset()
	Next() (uint64, error)
}

// NewUniform returns a new sampler
func NewUniform() Uniform {
	return &uniformResample{
		rng: globalRNG,
	}
}

// NewDeterministicUniform returns a new sampler driven by [source]
func NewDeterministicUniform(source Source) Uniform {
	return &uniformResample{
		rng: &rng{rng: source},
	}
}
