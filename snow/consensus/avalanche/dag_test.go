// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
)

func TestDAGInsertCountsUnacceptedParents(t *testing.T) {
	require := require.New(t)

	d := newDAG()

	accepted := newTestTx(nil)
	accepted.status = choices.Accepted
	processing := newTestTx(nil)

	acceptedIndex := d.Insert(&node{item: accepted})
	processingIndex := d.Insert(&node{item: processing})

	child := &node{
		item:    newTestTx([]ids.ID{accepted.ID(), processing.ID()}),
		height:  1,
		parents: []int{acceptedIndex, processingIndex},
	}
	childIndex := d.Insert(child)

	require.Equal(3, d.Len())
	require.Equal(1, child.unaccepted)
	require.Equal([]int{childIndex}, d.At(acceptedIndex).children)
	require.Equal([]int{childIndex}, d.At(processingIndex).children)

	n, index, ok := d.Get(child.item.ID())
	require.True(ok)
	require.Same(child, n)
	require.Equal(childIndex, index)

	_, _, ok = d.Get(ids.GenerateTestID())
	require.False(ok)
}

func TestDAGRemoveEvictsChildlessAcceptedAncestors(t *testing.T) {
	require := require.New(t)

	d := newDAG()

	grandparent := newTestTx(nil)
	grandparent.status = choices.Accepted
	parent := newTestTx([]ids.ID{grandparent.ID()})
	parent.status = choices.Accepted
	sibling := newTestTx(nil)

	grandparentIndex := d.Insert(&node{item: grandparent})
	parentIndex := d.Insert(&node{
		item:    parent,
		height:  1,
		parents: []int{grandparentIndex},
	})
	siblingIndex := d.Insert(&node{item: sibling})
	child := newTestTx([]ids.ID{parent.ID(), sibling.ID()})
	childIndex := d.Insert(&node{
		item:    child,
		height:  2,
		parents: []int{parentIndex, siblingIndex},
	})

	d.Remove(childIndex)

	// The accepted chain has nothing left depending on it.
	require.Equal(1, d.Len())
	_, _, ok := d.Get(sibling.ID())
	require.True(ok)
	require.Empty(d.At(siblingIndex).children)
	require.Nil(d.At(parentIndex))
	require.Nil(d.At(grandparentIndex))

	// Freed slots are reused.
	reused := d.Insert(&node{item: newTestTx(nil)})
	require.Contains([]int{grandparentIndex, parentIndex, childIndex}, reused)
	require.Equal(2, d.Len())
}

func TestRemoveIndex(t *testing.T) {
	require := require.New(t)

	require.Equal([]int{1, 3}, removeIndex([]int{1, 2, 3}, 2))
	require.Equal([]int{1, 3}, removeIndex([]int{1, 3}, 2))
	require.Empty(removeIndex([]int{2}, 2))
}
