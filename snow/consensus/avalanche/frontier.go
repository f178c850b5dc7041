// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/google/btree"

	"github.com/ava-labs/avalanche-consensus/ids"
)

const frontierDegree = 16

type frontierEntry struct {
	height uint64
	id     ids.ID
}

func (e frontierEntry) Less(other frontierEntry) bool {
	if e.height != other.height {
		return e.height < other.height
	}
	return e.id.Less(other.id)
}

// frontier is the set of processing items whose parents are all accepted,
// ordered by (height, ID).
type frontier struct {
	tree *btree.BTreeG[frontierEntry]
}

func newFrontier() *frontier {
	return &frontier{
		tree: btree.NewG(frontierDegree, frontierEntry.Less),
	}
}

func (f *frontier) Add(height uint64, id ids.ID) {
	f.tree.ReplaceOrInsert(frontierEntry{
		height: height,
		id:     id,
	})
}

func (f *frontier) Remove(height uint64, id ids.ID) {
	f.tree.Delete(frontierEntry{
		height: height,
		id:     id,
	})
}

func (f *frontier) Contains(height uint64, id ids.ID) bool {
	return f.tree.Has(frontierEntry{
		height: height,
		id:     id,
	})
}

func (f *frontier) Len() int {
	return f.tree.Len()
}

// List returns the frontier in ascending order.
func (f *frontier) List() []ids.ID {
	frontierIDs := make([]ids.ID, 0, f.tree.Len())
	f.tree.Ascend(func(e frontierEntry) bool {
		frontierIDs = append(frontierIDs, e.id)
		return true
	})
	return frontierIDs
}

// Ascend calls [visit] on the frontier in ascending order until [visit]
// returns false.
func (f *frontier) Ascend(visit func(id ids.ID) bool) {
	f.tree.Ascend(func(e frontierEntry) bool {
		return visit(e.id)
	})
}
