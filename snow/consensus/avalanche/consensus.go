// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/iterator"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

// Consensus represents a general avalanche instance that can be used directly
// to process a series of partially ordered elements.
type Consensus interface {
	fmt.Stringer

	// Add an item to consensus. The item's parents must be known, either as
	// processing, accepted or recently rejected items.
	//
	// Returns ErrDuplicateID if the item is already known, ErrUnknownParent if
	// a parent is unknown and ErrCycle if the item depends on itself.
	Add(ctx context.Context, item Decidable) error

	// RecordPoll collects the results of a network poll. [votes] maps each
	// queried item to the bag of choices the peers reported for it. Each
	// conflict set is updated at most once per poll, using the votes of its
	// smallest queried item.
	RecordPoll(ctx context.Context, votes map[ids.ID]bag.Bag[ids.ID]) error

	// Frontier returns the processing items whose parents are all accepted,
	// ordered by height and then ID.
	Frontier() iterator.Iterator[ids.ID]

	// PollTargets returns up to [maxTargets] frontier items such that no two
	// of them belong to the same conflict set. Finalized sets are skipped.
	PollTargets(maxTargets int) []ids.ID

	// Preferences returns the processing items that are preferred in their
	// conflict sets.
	Preferences() set.Set[ids.ID]

	// Preference returns the item that this instance would vote for when
	// asked about [id].
	Preference(id ids.ID) (ids.ID, bool)

	// IsVirtuous returns true if the processing item has never been in
	// conflict.
	IsVirtuous(id ids.ID) bool

	// Status returns the status of a processing, accepted or recently rejected
	// item.
	Status(id ids.ID) choices.Status

	// Get returns a processing item.
	Get(id ids.ID) (Decidable, bool)

	// NumProcessing returns the number of currently processing items.
	NumProcessing() int

	// ProcessingTime returns how long the oldest processing item has been
	// processing.
	ProcessingTime() time.Duration

	// Finalized returns true if all items that have been added have been
	// finalized.
	Finalized() bool
}
