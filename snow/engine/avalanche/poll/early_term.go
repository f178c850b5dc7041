// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poll

import (
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

type earlyTermFactory struct {
	alpha int
}

// NewEarlyTermFactory returns a factory that returns polls with early
// termination.
func NewEarlyTermFactory(alpha int) Factory {
	return &earlyTermFactory{alpha: alpha}
}

func (f *earlyTermFactory) New(itemIDs []ids.ID, vdrs []ids.NodeID) Poll {
	return &earlyTermPoll{
		itemIDs:  itemIDs,
		votes:    make([]bag.Bag[ids.ID], len(itemIDs)),
		polled:   set.Of(vdrs...),
		alpha:    f.alpha,
		received: 0,
	}
}

// earlyTermPoll finishes when the remaining validators can't change the
// result of the poll for any item.
type earlyTermPoll struct {
	itemIDs  []ids.ID
	votes    []bag.Bag[ids.ID]
	polled   set.Set[ids.NodeID]
	alpha    int
	received int
}

// Vote registers a response for this poll. A response that doesn't contain
// exactly one vote per polled item is treated as a drop.
func (p *earlyTermPoll) Vote(vdr ids.NodeID, votes []ids.ID) {
	if !p.polled.Contains(vdr) {
		// if the validator wasn't polled or already responded to this poll, we
		// should just drop the vote
		return
	}

	// make sure that a validator can't respond multiple times
	p.polled.Remove(vdr)

	if len(votes) != len(p.itemIDs) {
		return
	}
	p.received++
	for i, vote := range votes {
		p.votes[i].Add(vote)
	}
}

// Drop any future response for this poll
func (p *earlyTermPoll) Drop(vdr ids.NodeID) {
	p.polled.Remove(vdr)
}

// Finished returns true when every validator has responded, when an alpha
// majority has returned for every item, or when an alpha majority can no
// longer return for any item.
func (p *earlyTermPoll) Finished() bool {
	remaining := p.polled.Len()
	if remaining == 0 || p.received+remaining < p.alpha {
		return true
	}
	for _, votes := range p.votes {
		if _, freq := votes.Mode(); freq < p.alpha {
			return false
		}
	}
	return true
}

func (p *earlyTermPoll) Result() map[ids.ID]bag.Bag[ids.ID] {
	result := make(map[ids.ID]bag.Bag[ids.ID], len(p.itemIDs))
	for i, itemID := range p.itemIDs {
		result[itemID] = p.votes[i]
	}
	return result
}

func (p *earlyTermPoll) String() string {
	return fmt.Sprintf("waiting on %d validators, received %d responses for %d items",
		p.polled.Len(), p.received, len(p.itemIDs))
}
