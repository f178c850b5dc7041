// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
)

var _ Consensus = (*Flat)(nil)

func NewFlat(factory Factory, params Parameters, choice ids.ID) Consensus {
	return &Flat{
		Nnary:  factory.NewNnary(params, choice),
		params: params,
	}
}

// Flat is a naive implementation of a multi-choice snowball instance
type Flat struct {
	// wraps the n-nary snow logic
	Nnary

	// params contains all the configurations of a snowball instance
	params Parameters
}

func (f *Flat) RecordPoll(votes bag.Bag[ids.ID]) bool {
	pollMode, numVotes, unique := votes.UniqueMode()
	if !unique || numVotes < f.params.Alpha {
		f.RecordUnsuccessfulPoll()
		return false
	}
	f.RecordSuccessfulPoll(pollMode)
	return true
}
