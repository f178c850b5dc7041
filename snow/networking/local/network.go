// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"
)

var (
	errUnknownNode       = errors.New("unknown node")
	errDuplicateNode     = errors.New("duplicate node")
	errThrottled         = errors.New("query throttled")
	errClosed            = errors.New("network closed")
	errInvalidDrop       = errors.New("drop probability must be in [0, 1]")
	errNegativeLatency   = errors.New("latency must not be negative")
	errNegativeRateLimit = errors.New("inbound rate limit must not be negative")
)

// Config describes the links between the nodes of a Network.
type Config struct {
	// Latency is the one-way delay of every message.
	Latency time.Duration `json:"latency"`
	// Jitter is the maximum random delay added to every message.
	Jitter time.Duration `json:"jitter"`
	// DropProbability is the probability that a query is lost. A lost query
	// is never answered.
	DropProbability float64 `json:"dropProbability"`
	// InboundRateLimit is the maximum number of queries per second a node
	// answers. 0 disables the limit.
	InboundRateLimit float64 `json:"inboundRateLimit"`
	InboundBurst     int     `json:"inboundBurst"`
	// Seed of the source that decides delays and losses.
	Seed int64 `json:"seed"`
}

func (c Config) Verify() error {
	switch {
	case c.Latency < 0 || c.Jitter < 0:
		return errNegativeLatency
	case c.DropProbability < 0 || c.DropProbability > 1:
		return fmt.Errorf("%w: %f", errInvalidDrop, c.DropProbability)
	case c.InboundRateLimit < 0:
		return errNegativeRateLimit
	default:
		return nil
	}
}

type node struct {
	handler common.QueryHandler
	limiter *rate.Limiter
}

// Network delivers queries between nodes running in the same process.
type Network struct {
	config Config
	log    logging.Logger

	lock   sync.RWMutex
	nodes  map[ids.NodeID]*node
	closed bool

	// closing [quit] unblocks every query waiting on the network
	quit chan struct{}

	sourceLock sync.Mutex
	source     sampler.Source
}

func NewNetwork(config Config, log logging.Logger) (*Network, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}
	return &Network{
		config: config,
		log:    log,
		nodes:  make(map[ids.NodeID]*node),
		quit:   make(chan struct{}),
		source: sampler.NewSource(config.Seed),
	}, nil
}

// Register routes queries sent to [nodeID] to [handler].
func (n *Network) Register(nodeID ids.NodeID, handler common.QueryHandler) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.closed {
		return errClosed
	}
	if _, ok := n.nodes[nodeID]; ok {
		return fmt.Errorf("%w: %s", errDuplicateNode, nodeID)
	}

	limit := rate.Inf
	if n.config.InboundRateLimit > 0 {
		limit = rate.Limit(n.config.InboundRateLimit)
	}
	n.nodes[nodeID] = &node{
		handler: handler,
		limiter: rate.NewLimiter(limit, max(n.config.InboundBurst, 1)),
	}
	return nil
}

// Sender returns the sender used by [nodeID] to query its peers.
func (n *Network) Sender(nodeID ids.NodeID) common.Sender {
	return common.SenderFunc(func(ctx context.Context, to ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error) {
		return n.query(ctx, nodeID, to, requestID, itemIDs)
	})
}

// Close fails all outstanding and future queries.
func (n *Network) Close() {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	close(n.quit)
}

func (n *Network) query(ctx context.Context, from, to ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error) {
	n.lock.RLock()
	dest, ok := n.nodes[to]
	closed := n.closed
	n.lock.RUnlock()

	switch {
	case closed:
		return nil, errClosed
	case !ok:
		return nil, fmt.Errorf("%w: %s", errUnknownNode, to)
	}

	if n.dropped() {
		n.log.Verbo("dropping query",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Uint32("requestID", requestID),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-n.quit:
			return nil, errClosed
		}
	}

	if !dest.limiter.Allow() {
		return nil, fmt.Errorf("%w: %s", errThrottled, to)
	}

	if err := n.sleep(ctx, n.delay()); err != nil {
		return nil, err
	}
	votes, err := dest.handler.HandleQuery(ctx, from, itemIDs)
	if err != nil {
		return nil, err
	}
	if err := n.sleep(ctx, n.delay()); err != nil {
		return nil, err
	}
	return votes, nil
}

func (n *Network) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.quit:
		return errClosed
	}
}

func (n *Network) delay() time.Duration {
	if n.config.Jitter <= 0 {
		return n.config.Latency
	}
	return n.config.Latency + time.Duration(n.float64()*float64(n.config.Jitter))
}

func (n *Network) dropped() bool {
	return n.config.DropProbability > 0 && n.float64() < n.config.DropProbability
}

// float64 returns a number in [0, 1).
func (n *Network) float64() float64 {
	n.sourceLock.Lock()
	defer n.sourceLock.Unlock()

	return float64(n.source.Uint64()>>11) / (1 << 53)
}
