// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package local

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"
)

var (
	_ common.QueryHandler = (*fixed)(nil)
	_ common.QueryHandler = (*random)(nil)
)

// NewFixed returns a handler that always answers with [choice].
func NewFixed(choice ids.ID) common.QueryHandler {
	return &fixed{choice: choice}
}

type fixed struct {
	choice ids.ID
}

func (f *fixed) HandleQuery(_ context.Context, _ ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error) {
	votes := make([]ids.ID, len(itemIDs))
	for i := range votes {
		votes[i] = f.choice
	}
	return votes, nil
}

// NewRandom returns a handler that answers every query with one of the
// queried items picked at random.
func NewRandom(source sampler.Source) common.QueryHandler {
	return &random{source: source}
}

type random struct {
	lock   sync.Mutex
	source sampler.Source
}

func (r *random) HandleQuery(_ context.Context, _ ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	votes := make([]ids.ID, len(itemIDs))
	for i := range votes {
		votes[i] = itemIDs[r.source.Uint64()%uint64(len(itemIDs))]
	}
	return votes, nil
}
