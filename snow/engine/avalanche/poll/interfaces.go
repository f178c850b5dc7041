// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poll

import (
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
)

// Set is a collection of polls
type Set interface {
	fmt.Stringer

	Add(requestID uint32, itemIDs []ids.ID, vdrs []ids.NodeID) bool
	Vote(requestID uint32, vdr ids.NodeID, votes []ids.ID) []map[ids.ID]bag.Bag[ids.ID]
	Drop(requestID uint32, vdr ids.NodeID) []map[ids.ID]bag.Bag[ids.ID]
	Len() int
}

// Poll is an outstanding poll
type Poll interface {
	fmt.Stringer

	// Vote registers the response of [vdr]. votes[i] is the preference of
	// [vdr] for the i-th polled item.
	Vote(vdr ids.NodeID, votes []ids.ID)
	Drop(vdr ids.NodeID)
	Finished() bool
	// Result maps each polled item to the votes reported for it.
	Result() map[ids.ID]bag.Bag[ids.ID]
}

// Factory creates a new Poll
type Factory interface {
	New(itemIDs []ids.ID, vdrs []ids.NodeID) Poll
}
