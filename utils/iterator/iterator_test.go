// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package iterator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	require := require.New(t)

	it := Empty[int]{}
	require.False(it.Next())
	require.Zero(it.Value())
	require.Empty(ToSlice[int](it))
}

func TestFromSlice(t *testing.T) {
	require := require.New(t)

	it := FromSlice(1, 2, 3)
	require.Zero(it.Value())
	require.True(it.Next())
	require.Equal(1, it.Value())
	require.Equal([]int{2, 3}, ToSlice(it))
	require.False(it.Next())
	require.Zero(it.Value())
}

func TestTake(t *testing.T) {
	tests := []struct {
		name     string
		elements []int
		n        int
		expected []int
	}{
		{
			name:     "fewer elements than requested",
			elements: []int{1},
			n:        2,
			expected: []int{1},
		},
		{
			name:     "more elements than requested",
			elements: []int{1, 2, 3},
			n:        2,
			expected: []int{1, 2},
		},
		{
			name:     "none requested",
			elements: []int{1, 2, 3},
			n:        0,
			expected: []int{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Take(FromSlice(test.elements...), test.n))
		})
	}
}
