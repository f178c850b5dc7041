// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

// WeightedWithoutReplacement samples distinct indices where the probability of
// drawing an index is proportional to its weight among the indices that have
// not been drawn yet. Indices with zero weight are never returned.
type WeightedWithoutReplacement interface {
	Initialize(weights []uint64) error
	Sample(count int) ([]int, error)
}

// NewWeightedWithoutReplacement returns a new sampler
func NewWeightedWithoutReplacement() WeightedWithoutReplacement {
	return &weightedWithoutReplacement{
		rng: globalRNG,
	}
}

// NewDeterministicWeightedWithoutReplacement returns a new sampler driven by
// [source]
func NewDeterministicWeightedWithoutReplacement(source Source) WeightedWithoutReplacement {
	return &weightedWithoutReplacement{
		rng: &rng{rng: source},
	}
}

type weightedWithoutReplacement struct {
	rng     *rng
	weights []uint64
	heap    weightedHeap
}

func (s *weightedWithoutReplacement) Initialize(weights []uint64) error {
	s.weights = append(s.weights[:0], weights...)
	return s.heap.Initialize(s.weights)
}

func (s *weightedWithoutReplacement) Sample(count int) ([]int, error) {
	// Removed weights are restored once the sample is taken.
	defer func() {
		_ = s.heap.Initialize(s.weights)
	}()

	indices := make([]int, count)
	for i := range indices {
		totalWeight := s.heap.totalWeight()
		if totalWeight == 0 {
			return nil, ErrOutOfRange
		}

		index, err := s.heap.Sample(s.rng.Uint64Inclusive(totalWeight - 1))
		if err != nil {
			return nil, err
		}
		s.heap.remove(index)
		indices[i] = index
	}
	return indices, nil
}
