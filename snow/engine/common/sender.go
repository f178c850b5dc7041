// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package common

import (
	"context"

	"github.com/ava-labs/avalanche-consensus/ids"
)

// Sender defines how a consensus engine sends queries to other peers.
type Sender interface {
	// Query asks [nodeID] for its preference for each of [itemIDs]. The
	// returned slice holds one choice per requested item, in request order.
	//
	// An error means that the peer didn't answer. The caller drops the peer
	// from the poll.
	Query(ctx context.Context, nodeID ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error)
}

// QueryHandler answers queries sent by a Sender.
type QueryHandler interface {
	// HandleQuery returns this node's preference for each of [itemIDs], in
	// request order.
	HandleQuery(ctx context.Context, nodeID ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error)
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(ctx context.Context, nodeID ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error)

func (f SenderFunc) Query(ctx context.Context, nodeID ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error) {
	return f(ctx, nodeID, requestID, itemIDs)
}
