// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

// ConflictSet is a group of processing items of which at most one can be
// accepted. Items that share an input are placed in the same set, and sets
// are merged transitively.
type ConflictSet struct {
	alpha   int
	members set.Set[ids.ID]
	sb      snowball.Nnary
}

// RecordPoll applies one round of votes to the set. Votes for items outside of
// the set are ignored. Returns true if a member received a unique majority of
// at least alpha votes.
func (cs *ConflictSet) RecordPoll(votes bag.Bag[ids.ID]) bool {
	if cs.sb.Finalized() {
		return false
	}

	votes = votes.Filter(cs.members.Contains)
	choice, numVotes, unique := votes.UniqueMode()
	if !unique || numVotes < cs.alpha {
		cs.sb.RecordUnsuccessfulPoll()
		return false
	}
	cs.sb.RecordSuccessfulPoll(choice)
	return true
}

func (cs *ConflictSet) IsPreferred(id ids.ID) bool {
	return cs.sb.Preference() == id
}

func (cs *ConflictSet) Preference() ids.ID {
	return cs.sb.Preference()
}

func (cs *ConflictSet) Confidence() int {
	return cs.sb.Confidence()
}

// Virtuous returns true if the set never had more than one member.
func (cs *ConflictSet) Virtuous() bool {
	return !cs.sb.Rogue()
}

func (cs *ConflictSet) Finalized() bool {
	return cs.sb.Finalized()
}

// Members returns the members of the set in ascending order.
func (cs *ConflictSet) Members() []ids.ID {
	return set.SortedList(cs.members)
}

func (cs *ConflictSet) Len() int {
	return cs.members.Len()
}

func (cs *ConflictSet) String() string {
	return fmt.Sprintf("CS(Members = %d, %s)", cs.members.Len(), cs.sb)
}

type conflicts struct {
	params  snowball.Parameters
	factory snowball.Factory

	// Key: Item ID
	// Value: The conflict set the processing item belongs to
	sets map[ids.ID]*ConflictSet

	// Key: Input ID
	// Value: The processing items that consume the input
	spenders map[ids.ID]set.Set[ids.ID]
}

func newConflicts(params snowball.Parameters, factory snowball.Factory) *conflicts {
	return &conflicts{
		params:   params,
		factory:  factory,
		sets:     make(map[ids.ID]*ConflictSet),
		spenders: make(map[ids.ID]set.Set[ids.ID]),
	}
}

// Conflicts returns the processing items, other than [id], that consume at
// least one of [inputIDs].
func (c *conflicts) Conflicts(id ids.ID, inputIDs []ids.ID) set.Set[ids.ID] {
	var conflicting set.Set[ids.ID]
	for _, inputID := range inputIDs {
		conflicting.Union(c.spenders[inputID])
	}
	conflicting.Remove(id)
	return conflicting
}

// Add registers [id] as consuming [inputIDs]. Every set containing a
// conflicting item is merged into one of them, which keeps its snowball
// state, and [id] is added to the result. A finalized set is kept over an
// undecided one, otherwise the largest set is kept.
func (c *conflicts) Add(id ids.ID, inputIDs []ids.ID) *ConflictSet {
	var (
		keeper *ConflictSet
		merged []*ConflictSet
		seen   = make(map[*ConflictSet]struct{})
	)
	for _, conflictID := range set.SortedList(c.Conflicts(id, inputIDs)) {
		cs := c.sets[conflictID]
		if _, ok := seen[cs]; ok {
			continue
		}
		seen[cs] = struct{}{}
		merged = append(merged, cs)
		if keeper == nil || keeps(cs, keeper) {
			keeper = cs
		}
	}

	if keeper == nil {
		keeper = &ConflictSet{
			alpha:   c.params.Alpha,
			members: set.Of(id),
			sb:      c.factory.NewNnary(c.params, id),
		}
	} else {
		for _, cs := range merged {
			if cs == keeper {
				continue
			}
			for _, memberID := range cs.Members() {
				keeper.members.Add(memberID)
				keeper.sb.Add(memberID)
				c.sets[memberID] = keeper
			}
		}
		keeper.members.Add(id)
		keeper.sb.Add(id)
	}
	c.sets[id] = keeper

	for _, inputID := range inputIDs {
		spenders := c.spenders[inputID]
		spenders.Add(id)
		c.spenders[inputID] = spenders
	}
	return keeper
}

// Get returns the set that [id] belongs to.
func (c *conflicts) Get(id ids.ID) (*ConflictSet, bool) {
	cs, ok := c.sets[id]
	return cs, ok
}

// Remove drops [id] from its set. The rest of the set keeps voting.
func (c *conflicts) Remove(id ids.ID, inputIDs []ids.ID) {
	cs, ok := c.sets[id]
	if !ok {
		return
	}
	delete(c.sets, id)
	cs.members.Remove(id)
	cs.sb.Remove(id)
	c.removeSpender(id, inputIDs)
}

// Decide removes the set of [winner] and returns the other members of the set
// in ascending order.
func (c *conflicts) Decide(winner ids.ID, inputs func(ids.ID) []ids.ID) []ids.ID {
	cs, ok := c.sets[winner]
	if !ok {
		return nil
	}

	members := cs.Members()
	losers := make([]ids.ID, 0, len(members)-1)
	for _, memberID := range members {
		delete(c.sets, memberID)
		c.removeSpender(memberID, inputs(memberID))
		if memberID != winner {
			losers = append(losers, memberID)
		}
	}
	return losers
}

// NumSets returns the number of distinct conflict sets.
func (c *conflicts) NumSets() int {
	seen := make(map[*ConflictSet]struct{}, len(c.sets))
	for _, cs := range c.sets {
		seen[cs] = struct{}{}
	}
	return len(seen)
}

// keeps returns true if [cs] should absorb [other] on a merge.
func keeps(cs, other *ConflictSet) bool {
	if cs.Finalized() != other.Finalized() {
		return cs.Finalized()
	}
	return cs.Len() > other.Len()
}

func (c *conflicts) removeSpender(id ids.ID, inputIDs []ids.ID) {
	for _, inputID := range inputIDs {
		spenders, ok := c.spenders[inputID]
		if !ok {
			continue
		}
		spenders.Remove(id)
		if spenders.Len() == 0 {
			delete(c.spenders, inputID)
			continue
		}
		c.spenders[inputID] = spenders
	}
}
