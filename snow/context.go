// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snow

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/trace"
	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
)

// Context is information about the current execution.
// [NetworkID] is the ID of the network this context exists within.
// [ChainID] is the ID of the chain this context exists within.
// [NodeID] is the ID of this node
type Context struct {
	NetworkID uint32
	ChainID   ids.ID
	NodeID    ids.NodeID

	Log logging.Logger
	// Lock serializes mutations of consensus state with reads made on behalf
	// of peers.
	Lock sync.RWMutex
}

// Expose gatherer interface for unit testing.
type Registerer interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type ConsensusContext struct {
	*Context

	// PrimaryAlias is the primary alias of the chain this context exists
	// within.
	PrimaryAlias string

	// Registers all consensus metrics.
	Registerer Registerer

	// Tracer records spans for rounds and queries.
	Tracer trace.Tracer

	// Decisions is notified of every accepted and rejected item, in decision
	// order.
	Decisions AcceptorGroup

	// State indicates the current state of this consensus instance.
	State utils.Atomic[EngineState]
}

func DefaultContextTest() *Context {
	return &Context{
		NetworkID: 12345,
		ChainID:   ids.ID{'t', 'e', 's', 't', 'c', 'h', 'a', 'i', 'n'},
		NodeID:    ids.GenerateTestNodeID(),
		Log:       logging.NoLog,
	}
}

func DefaultConsensusContextTest() *ConsensusContext {
	ctx := DefaultContextTest()
	return &ConsensusContext{
		Context:      ctx,
		PrimaryAlias: ctx.ChainID.String(),
		Registerer:   prometheus.NewRegistry(),
		Tracer:       trace.Noop,
		Decisions:    NewAcceptorGroup(ctx.Log),
	}
}
