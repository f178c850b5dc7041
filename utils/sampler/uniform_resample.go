// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import "github.com/ava-labs/avalanche-consensus/utils/set"

// uniformResample draws indices with replacement and redraws on collision.
// It is cheap to initialize and efficient when [count] is much smaller than
// the population.
type uniformResample struct {
	rng    *rng
	length uint64
	drawn  set.Set[uint64]
}

func (s *uniformResample) Initialize(length uint64) {
	s.length = length
	s.Reset()
}

func (s *uniformResample) Sample(count int) ([]uint64, error) {
	if count < 0 || uint64(count) > s.length {
		return nil, ErrOutOfRange
	}

	s.Reset()
	indices := make([]uint64, 0, count)
	for len(indices) < count {
		index, err := s.Next()
		if err != nil {
			return nil, err
		}
		indices = append(indices, index)
	}
	return indices, nil
}

func (s *uniformResample) Reset() {
	s.drawn.Clear()
}

func (s *uniformResample) Next() (uint64, error) {
	if uint64(s.drawn.Len()) >= s.length {
		return 0, ErrOutOfRange
	}

	index := s.rng.Uint64Inclusive(s.length - 1)
	for s.drawn.Contains(index) {
		index = s.rng.Uint64Inclusive(s.length - 1)
	}
	s.drawn.Add(index)
	return index, nil
}
