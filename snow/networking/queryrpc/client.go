// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queryrpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
)

var (
	_ common.Sender = (*Client)(nil)

	DefaultDialOptions = []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(math.MaxInt)),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(math.MaxInt)),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	errNotConnected       = errors.New("not connected")
	errUnexpectedResponse = errors.New("unexpected number of preferences")
)

// Dial returns a connection to the query server at [addr]. [opts] are applied
// after DefaultDialOptions.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := make([]grpc.DialOption, 0, len(DefaultDialOptions)+len(opts))
	dialOpts = append(dialOpts, DefaultDialOptions...)
	dialOpts = append(dialOpts, opts...)
	return grpc.Dial(addr, dialOpts...)
}

// Client sends queries to peers over gRPC connections.
type Client struct {
	nodeID ids.NodeID

	lock  sync.RWMutex
	conns map[ids.NodeID]grpc.ClientConnInterface
}

// NewClient returns a client that identifies itself as [nodeID].
func NewClient(nodeID ids.NodeID) *Client {
	return &Client{
		nodeID: nodeID,
		conns:  make(map[ids.NodeID]grpc.ClientConnInterface),
	}
}

func (c *Client) Connect(nodeID ids.NodeID, conn grpc.ClientConnInterface) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns[nodeID] = conn
}

func (c *Client) Disconnect(nodeID ids.NodeID) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.conns, nodeID)
}

func (c *Client) Query(ctx context.Context, nodeID ids.NodeID, requestID uint32, itemIDs []ids.ID) ([]ids.ID, error) {
	c.lock.RLock()
	conn, ok := c.conns[nodeID]
	c.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotConnected, nodeID)
	}

	req := &QueryRequest{
		RequestID: requestID,
		NodeID:    c.nodeID,
		ItemIDs:   itemIDs,
	}
	resp := new(QueryResponse)
	if err := conn.Invoke(ctx, queryMethod, req, resp, grpc.ForceCodec(Codec{})); err != nil {
		return nil, err
	}
	if len(resp.Preferences) != len(itemIDs) {
		return nil, fmt.Errorf("%w: expected %d but got %d", errUnexpectedResponse, len(itemIDs), len(resp.Preferences))
	}
	return resp.Preferences, nil
}
