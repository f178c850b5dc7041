// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
)

// Consensus represents a general snow instance that can be used directly to
// process the results of network queries.
type Consensus interface {
	fmt.Stringer

	// Adds a new choice to vote on
	Add(newChoice ids.ID)

	// Returns the currently preferred choice to be finalized
	Preference() ids.ID

	// RecordPoll records the results of a network poll. Assumes all choices
	// have been previously added.
	//
	// Returns true if the poll had a unique choice with at least alpha votes.
	RecordPoll(votes bag.Bag[ids.ID]) bool

	// RecordUnsuccessfulPoll resets the snowflake counters of this consensus
	// instance
	RecordUnsuccessfulPoll()

	// Return whether a choice has been finalized
	Finalized() bool
}

// Nnary is a snow instance deciding between an unbounded number of values.
// After the caller performs a sample of k nodes, it will call
// RecordSuccessfulPoll if a unique choice collected >= alpha votes and
// RecordUnsuccessfulPoll otherwise.
type Nnary interface {
	fmt.Stringer

	// Adds a new possible choice. Once a second choice has been added the
	// instance is rogue for the rest of its life.
	Add(newChoice ids.ID)

	// Remove drops a choice that can no longer be accepted. If the removed
	// choice was preferred, the remaining choice with the largest preference
	// strength becomes preferred and any finalization is undone.
	Remove(choice ids.ID)

	// Returns the currently preferred choice to be finalized
	Preference() ids.ID

	// RecordSuccessfulPoll records a successful poll towards finalizing the
	// specified choice. Assumes the choice was previously added.
	RecordSuccessfulPoll(choice ids.ID)

	// RecordUnsuccessfulPoll resets the snowflake counter of this instance
	RecordUnsuccessfulPoll()

	// Confidence returns the number of consecutive successful polls for the
	// last successful choice.
	Confidence() int

	// Rogue returns true if this instance ever had more than one choice.
	Rogue() bool

	// Return whether a choice has been finalized
	Finalized() bool
}
