// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"
	"github.com/ava-labs/avalanche-consensus/utils/set"

	safemath "github.com/ava-labs/avalanche-consensus/utils/math"
)

func TestSetAdd(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	nodeID := ids.GenerateTestNodeID()

	require.ErrorIs(s.Add(nodeID, 0), errZeroWeight)
	require.NoError(s.Add(nodeID, 1))
	require.ErrorIs(s.Add(nodeID, 1), errDuplicateNodeID)

	require.True(s.Contains(nodeID))
	require.Equal(uint64(1), s.GetWeight(nodeID))
	require.Equal(uint64(1), s.Weight())
	require.Equal(1, s.Len())
	require.Equal([]Validator{{NodeID: nodeID, Weight: 1}}, s.List())
}

func TestSetAddOverflow(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	require.NoError(s.Add(ids.GenerateTestNodeID(), 1))
	err := s.Add(ids.GenerateTestNodeID(), math.MaxUint64)
	require.ErrorIs(err, safemath.ErrOverflow)
	require.Equal(1, s.Len())
}

func TestSetWeights(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	nodeID0 := ids.GenerateTestNodeID()
	nodeID1 := ids.GenerateTestNodeID()
	require.NoError(s.Add(nodeID0, 10))
	require.NoError(s.Add(nodeID1, 5))

	require.NoError(s.AddWeight(nodeID0, 5))
	require.NoError(s.AddWeight(ids.GenerateTestNodeID(), 5))
	require.Equal(uint64(15), s.GetWeight(nodeID0))
	require.Equal(uint64(20), s.Weight())

	subsetWeight, err := s.SubsetWeight(set.Of(nodeID0, ids.GenerateTestNodeID()))
	require.NoError(err)
	require.Equal(uint64(15), subsetWeight)

	require.NoError(s.RemoveWeight(nodeID0, 100))
	require.False(s.Contains(nodeID0))
	require.Zero(s.GetWeight(nodeID0))
	require.Equal(uint64(5), s.Weight())
	require.Equal([]Validator{{NodeID: nodeID1, Weight: 5}}, s.List())
}

func TestSetSample(t *testing.T) {
	require := require.New(t)

	s := NewSetWithSampler(sampler.NewDeterministicWeightedWithoutReplacement(sampler.NewSource(0)))

	sampled, err := s.Sample(0)
	require.NoError(err)
	require.Empty(sampled)

	_, err = s.Sample(1)
	require.ErrorIs(err, ErrInsufficientPeers)

	var nodeIDs set.Set[ids.NodeID]
	for i := 0; i < 5; i++ {
		nodeID := ids.GenerateTestNodeID()
		nodeIDs.Add(nodeID)
		require.NoError(s.Add(nodeID, uint64(i+1)))
	}

	sampled, err = s.Sample(5)
	require.NoError(err)
	require.Len(sampled, 5)
	require.Equal(nodeIDs, set.Of(sampled...))

	_, err = s.Sample(6)
	require.ErrorIs(err, ErrInsufficientPeers)
}

func TestSetMask(t *testing.T) {
	require := require.New(t)

	s := NewSet()
	masked := ids.GenerateTestNodeID()
	visible := ids.GenerateTestNodeID()

	// Masks survive the peer joining later.
	s.Mask(masked)
	require.NoError(s.Add(masked, 3))
	require.NoError(s.Add(visible, 1))
	require.Equal(uint64(4), s.Weight())
	require.Equal(uint64(1), s.SampleableWeight())
	require.Equal(1, s.SampleableLen())

	for i := 0; i < 10; i++ {
		sampled, err := s.Sample(1)
		require.NoError(err)
		require.Equal([]ids.NodeID{visible}, sampled)
	}
	_, err := s.Sample(2)
	require.ErrorIs(err, ErrInsufficientPeers)

	s.Reveal(masked)
	require.Equal(uint64(4), s.SampleableWeight())
	sampled, err := s.Sample(2)
	require.NoError(err)
	require.Equal(set.Of(masked, visible), set.Of(sampled...))

	s.Mask(visible)
	s.Mask(visible)
	require.Equal(uint64(3), s.SampleableWeight())
	require.Contains(s.String(), "Size = 2, SampleableWeight = 3, Weight = 4")
}
