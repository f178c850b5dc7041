// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tracker

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/validators"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

var _ Peers = (*peers)(nil)

// Peers tracks which peers of a validator set are connected. Disconnected
// peers are masked in the set so they aren't sampled.
type Peers interface {
	Connected(ctx context.Context, nodeID ids.NodeID) error
	Disconnected(ctx context.Context, nodeID ids.NodeID) error

	// ConnectedWeight returns the currently connected stake weight
	ConnectedWeight() uint64
	// ConnectedPercent returns the ratio of connected stake to total stake
	ConnectedPercent() float64
	// ConnectedPeers returns the currently connected peers
	ConnectedPeers() set.Set[ids.NodeID]
}

type peers struct {
	lock sync.RWMutex
	vdrs validators.Set
	// connectedPeers is the set of all connected peers
	connectedPeers set.Set[ids.NodeID]
}

// NewPeers returns a tracker in which every peer of [vdrs] starts out
// disconnected.
func NewPeers(vdrs validators.Set) Peers {
	for _, vdr := range vdrs.List() {
		vdrs.Mask(vdr.NodeID)
	}
	return &peers{
		vdrs: vdrs,
	}
}

func (p *peers) Connected(_ context.Context, nodeID ids.NodeID) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.connectedPeers.Add(nodeID)
	p.vdrs.Reveal(nodeID)
	return nil
}

func (p *peers) Disconnected(_ context.Context, nodeID ids.NodeID) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.connectedPeers.Remove(nodeID)
	p.vdrs.Mask(nodeID)
	return nil
}

func (p *peers) ConnectedWeight() uint64 {
	return p.vdrs.SampleableWeight()
}

func (p *peers) ConnectedPercent() float64 {
	totalWeight := p.vdrs.Weight()
	if totalWeight == 0 {
		return 1
	}
	return float64(p.vdrs.SampleableWeight()) / float64(totalWeight)
}

func (p *peers) ConnectedPeers() set.Set[ids.NodeID] {
	p.lock.RLock()
	defer p.lock.RUnlock()

	connectedPeers := set.NewSet[ids.NodeID](p.connectedPeers.Len())
	connectedPeers.Union(p.connectedPeers)
	return connectedPeers
}
