// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

func newTestConflicts() *conflicts {
	return newConflicts(testParameters(), snowball.SnowballFactory)
}

func TestConflictsVirtuous(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	a := ids.GenerateTestID()
	b := ids.GenerateTestID()

	csA := c.Add(a, []ids.ID{ids.GenerateTestID()})
	csB := c.Add(b, []ids.ID{ids.GenerateTestID()})

	require.NotSame(csA, csB)
	require.True(csA.Virtuous())
	require.True(csA.IsPreferred(a))
	require.Equal(2, c.NumSets())
	require.Empty(c.Conflicts(a, []ids.ID{ids.GenerateTestID()}))
}

func TestConflictsTransitiveMerge(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	utxo0 := ids.GenerateTestID()
	utxo1 := ids.GenerateTestID()
	utxo2 := ids.GenerateTestID()

	a := ids.GenerateTestID()
	b := ids.GenerateTestID()
	b2 := ids.GenerateTestID()
	bridge := ids.GenerateTestID()

	c.Add(a, []ids.ID{utxo0})
	c.Add(b, []ids.ID{utxo1})
	larger := c.Add(b2, []ids.ID{utxo1, utxo2})
	require.Equal(2, larger.Len())

	merged := c.Add(bridge, []ids.ID{utxo0, utxo2})
	require.Same(larger, merged)
	require.Equal(1, c.NumSets())
	require.False(merged.Virtuous())

	expected := []ids.ID{a, b, b2, bridge}
	utils.Sort(expected)
	require.Equal(expected, merged.Members())
	for _, id := range expected {
		cs, ok := c.Get(id)
		require.True(ok)
		require.Same(merged, cs)
	}

	require.Equal(set.Of(a, b2), c.Conflicts(bridge, []ids.ID{utxo0, utxo2}))
}

func TestConflictsMergeKeepsFinalizedSet(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	utxo0 := ids.GenerateTestID()
	utxo1 := ids.GenerateTestID()

	winner := ids.GenerateTestID()
	finalized := c.Add(winner, []ids.ID{utxo0})
	require.True(finalized.RecordPoll(bag.Of(winner)))
	require.True(finalized.Finalized())

	c.Add(ids.GenerateTestID(), []ids.ID{utxo1})
	c.Add(ids.GenerateTestID(), []ids.ID{utxo1})

	late := ids.GenerateTestID()
	merged := c.Add(late, []ids.ID{utxo0, utxo1})
	require.Same(finalized, merged)
	require.Equal(4, merged.Len())
	require.True(merged.Finalized())
	require.Equal(winner, merged.Preference())
}

func TestConflictSetRecordPoll(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	utxo := ids.GenerateTestID()
	a := ids.GenerateTestID()
	b := ids.GenerateTestID()

	c.Add(a, []ids.ID{utxo})
	cs := c.Add(b, []ids.ID{utxo})

	// Votes for non-members don't count.
	require.False(cs.RecordPoll(bag.Of(ids.GenerateTestID())))
	require.Zero(cs.Confidence())

	require.True(cs.RecordPoll(bag.Of(b)))
	require.Equal(b, cs.Preference())
	require.Equal(1, cs.Confidence())
	require.False(cs.Finalized())

	require.True(cs.RecordPoll(bag.Of(b)))
	require.True(cs.Finalized())

	// Finalized sets ignore polls.
	require.False(cs.RecordPoll(bag.Of(a)))
	require.Equal(b, cs.Preference())
	require.Contains(cs.String(), "Members = 2")
}

func TestConflictsRemove(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	utxo := ids.GenerateTestID()
	a := ids.GenerateTestID()
	b := ids.GenerateTestID()

	c.Add(a, []ids.ID{utxo})
	cs := c.Add(b, []ids.ID{utxo})
	for i := 0; i < 2; i++ {
		require.True(cs.RecordPoll(bag.Of(b)))
	}
	require.True(cs.Finalized())

	c.Remove(b, []ids.ID{utxo})
	_, ok := c.Get(b)
	require.False(ok)
	require.Equal([]ids.ID{a}, cs.Members())
	require.False(cs.Finalized())
	require.Equal(a, cs.Preference())
	require.Zero(cs.Confidence())
	require.False(cs.Virtuous())
	require.Equal(set.Of(a), c.Conflicts(b, []ids.ID{utxo}))

	// Removing an unknown item is a no-op.
	c.Remove(b, []ids.ID{utxo})
	require.Equal(1, cs.Len())
}

func TestConflictsDecide(t *testing.T) {
	require := require.New(t)

	c := newTestConflicts()
	utxo := ids.GenerateTestID()
	inputs := map[ids.ID][]ids.ID{}
	var members []ids.ID
	for i := 0; i < 3; i++ {
		id := ids.GenerateTestID()
		inputs[id] = []ids.ID{utxo}
		members = append(members, id)
		c.Add(id, inputs[id])
	}
	utils.Sort(members)

	losers := c.Decide(members[1], func(id ids.ID) []ids.ID {
		return inputs[id]
	})
	require.Equal([]ids.ID{members[0], members[2]}, losers)
	require.Zero(c.NumSets())
	require.Empty(c.spenders)
	require.Nil(c.Decide(members[1], nil))
}
