// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
)

// node is the arena entry of an item that is processing, or that is accepted
// and still has children in the arena.
type node struct {
	item   Decidable
	height uint64

	// parents are the arena indices of the parents that were in the arena when
	// this node was inserted.
	parents []int
	// children are the arena indices of the items that depend on this node.
	children []int

	// unaccepted is the number of parents that aren't accepted yet.
	unaccepted int

	// pendingAccept is set once the node won its conflict set. It will be
	// accepted as soon as [unaccepted] reaches zero.
	pendingAccept bool
}

// dag stores nodes in an arena. Edges are arena indices, so a parent never
// holds a reference to a child record.
type dag struct {
	indices map[ids.ID]int
	nodes   []*node
	free    []int
}

func newDAG() *dag {
	return &dag{
		indices: make(map[ids.ID]int),
	}
}

func (d *dag) Len() int {
	return len(d.indices)
}

func (d *dag) Get(id ids.ID) (*node, int, bool) {
	index, ok := d.indices[id]
	if !ok {
		return nil, 0, false
	}
	return d.nodes[index], index, true
}

func (d *dag) At(index int) *node {
	return d.nodes[index]
}

// Insert adds [n] to the arena and links it to its parents.
func (d *dag) Insert(n *node) int {
	var index int
	if numFree := len(d.free); numFree > 0 {
		index = d.free[numFree-1]
		d.free = d.free[:numFree-1]
		d.nodes[index] = n
	} else {
		index = len(d.nodes)
		d.nodes = append(d.nodes, n)
	}
	d.indices[n.item.ID()] = index

	for _, parentIndex := range n.parents {
		parent := d.nodes[parentIndex]
		parent.children = append(parent.children, index)
		if parent.item.Status() != choices.Accepted {
			n.unaccepted++
		}
	}
	return index
}

// Remove unlinks the node at [index] from its parents and frees its slot.
// Accepted parents left without children are removed as well.
func (d *dag) Remove(index int) {
	n := d.nodes[index]
	delete(d.indices, n.item.ID())
	d.nodes[index] = nil
	d.free = append(d.free, index)

	for _, parentIndex := range n.parents {
		parent := d.nodes[parentIndex]
		if parent == nil {
			continue
		}
		parent.children = removeIndex(parent.children, index)
		if len(parent.children) == 0 && parent.item.Status() == choices.Accepted {
			d.Remove(parentIndex)
		}
	}
}

func removeIndex(indices []int, index int) []int {
	for i, elem := range indices {
		if elem == index {
			return append(indices[:i], indices[i+1:]...)
		}
	}
	return indices
}
