// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package set

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	require := require.New(t)

	id1 := 1

	s := Set[int]{id1: struct{}{}}

	s.Add(id1)
	require.True(s.Contains(id1))

	s.Remove(id1)
	require.False(s.Contains(id1))

	s.Add(id1)
	require.True(s.Contains(id1))
	require.Len(s.List(), 1)
	require.Equal(id1, s.List()[0])

	s.Clear()
	require.False(s.Contains(id1))

	s.Add(id1)

	s2 := Set[int]{}

	require.False(s.Overlaps(s2))

	s2.Union(s)
	require.True(s2.Contains(id1))
	require.True(s.Overlaps(s2))

	s2.Difference(s)
	require.False(s2.Contains(id1))
	require.False(s.Overlaps(s2))
}

func TestOf(t *testing.T) {
	tests := []struct {
		name     string
		elements []int
		expected []int
	}{
		{
			name:     "nil",
			elements: nil,
			expected: []int{},
		},
		{
			name:     "empty",
			elements: []int{},
			expected: []int{},
		},
		{
			name:     "unique elements",
			elements: []int{1, 2, 3},
			expected: []int{1, 2, 3},
		},
		{
			name:     "duplicate elements",
			elements: []int{1, 2, 3, 1, 2, 3},
			expected: []int{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			s := Of(tt.elements...)

			require.Len(s, len(tt.expected))
			for _, expected := range tt.expected {
				require.True(s.Contains(expected))
			}
		})
	}
}

func TestSetNilNoPanic(t *testing.T) {
	var s Set[int]
	require.NotPanics(t, func() { s.Add(1) })
	require.True(t, s.Contains(1))
}

func TestSetPop(t *testing.T) {
	require := require.New(t)

	var s Set[int]
	_, ok := s.Pop()
	require.False(ok)

	s.Add(5)
	elt, ok := s.Pop()
	require.True(ok)
	require.Equal(5, elt)
	require.Zero(s.Len())

	_, ok = s.Peek()
	require.False(ok)
}

func TestSetEquals(t *testing.T) {
	require := require.New(t)

	require.True(Of(1, 2).Equals(Of(2, 1)))
	require.False(Of(1, 2).Equals(Of(1)))
}

func TestSortedListFunc(t *testing.T) {
	s := Of(3, 1, 2)
	require.Equal(t, []int{1, 2, 3}, SortedListFunc(s, func(a, b int) bool { return a < b }))
}

type height uint64

func (h height) Less(other height) bool {
	return h < other
}

func TestSortedList(t *testing.T) {
	require := require.New(t)

	require.Empty(SortedList(Set[height]{}))
	require.Equal([]height{1, 2, 3}, SortedList(Of[height](3, 1, 2)))
}
