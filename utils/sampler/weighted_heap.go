// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"golang.org/x/exp/slices"

	safemath "github.com/ava-labs/avalanche-consensus/utils/math"
)

var _ Weighted = (*weightedHeap)(nil)

type weightedHeapElement struct {
	weight           uint64
	cumulativeWeight uint64
	index            int
}

// weightedHeap stores the weights in a binary tree where every node holds the
// sum of the weights of its subtree. Heaviest weights are placed first so
// sampling terminates early on average.
//
// Initialization takes O(n * log(n)) time.
//
// Sampling and removal are performed in O(log(n)) time.
type weightedHeap struct {
	heap []weightedHeapElement
	// positions[i] is the location of the original index i in heap.
	positions []int
}

func (s *weightedHeap) Initialize(weights []uint64) error {
	s.heap = s.heap[:0]
	for i, weight := range weights {
		s.heap = append(s.heap, weightedHeapElement{
			weight:           weight,
			cumulativeWeight: weight,
			index:            i,
		})
	}

	// Optimize so that the most probable values are at the top of the heap
	slices.SortStableFunc(s.heap, func(a, b weightedHeapElement) bool {
		return a.weight > b.weight
	})

	if cap(s.positions) < len(weights) {
		s.positions = make([]int, len(weights))
	}
	s.positions = s.positions[:len(weights)]
	for position, element := range s.heap {
		s.positions[element.index] = position
	}

	for i := len(s.heap) - 1; i > 0; i-- {
		parentIndex := (i - 1) / 2
		newWeight, err := safemath.Add64(
			s.heap[parentIndex].cumulativeWeight,
			s.heap[i].cumulativeWeight,
		)
		if err != nil {
			return err
		}
		s.heap[parentIndex].cumulativeWeight = newWeight
	}
	return nil
}

func (s *weightedHeap) Sample(value uint64) (int, error) {
	if len(s.heap) == 0 || s.heap[0].cumulativeWeight <= value {
		return 0, ErrOutOfRange
	}

	index := 0
	for {
		currentElement := s.heap[index]
		currentWeight := currentElement.weight
		if value < currentWeight {
			return currentElement.index, nil
		}
		value -= currentWeight

		// The value is in one of the subtrees. Try the left one first.
		index = index*2 + 1
		if leftWeight := s.heap[index].cumulativeWeight; leftWeight <= value {
			value -= leftWeight
			index++
		}
	}
}

// totalWeight returns the sum of all remaining weights.
func (s *weightedHeap) totalWeight() uint64 {
	if len(s.heap) == 0 {
		return 0
	}
	return s.heap[0].cumulativeWeight
}

// remove sets the weight of the original index [index] to zero and returns
// the weight it had.
func (s *weightedHeap) remove(index int) uint64 {
	position := s.positions[index]
	weight := s.heap[position].weight
	s.heap[position].weight = 0
	for {
		s.heap[position].cumulativeWeight -= weight
		if position == 0 {
			return weight
		}
		position = (position - 1) / 2
	}
}
