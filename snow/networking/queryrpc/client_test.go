// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queryrpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/avalanche"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/snow/validators"
	"github.com/ava-labs/avalanche-consensus/utils/logging"

	avaeng "github.com/ava-labs/avalanche-consensus/snow/engine/avalanche"
)

const bufSize = 1024 * 1024

var errTest = errors.New("non-nil error")

type handlerFunc func(context.Context, ids.NodeID, []ids.ID) ([]ids.ID, error)

func (f handlerFunc) HandleQuery(ctx context.Context, nodeID ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error) {
	return f(ctx, nodeID, itemIDs)
}

// setupConn serves [handler] over an in-memory listener and returns a
// connection to it.
func setupConn(t *testing.T, handler common.QueryHandler) *grpc.ClientConn {
	listener := bufconn.Listen(bufSize)
	server := NewGRPCServer(NewServer(logging.NoLog, handler))
	go Serve(listener, server)

	conn, err := Dial("bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return listener.Dial()
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})
	return conn
}

func TestClientQuery(t *testing.T) {
	require := require.New(t)

	clientID := ids.GenerateTestNodeID()
	peerID := ids.GenerateTestNodeID()
	itemIDs := []ids.ID{ids.GenerateTestID(), ids.GenerateTestID()}
	preference := ids.GenerateTestID()

	conn := setupConn(t, handlerFunc(func(_ context.Context, nodeID ids.NodeID, queried []ids.ID) ([]ids.ID, error) {
		require.Equal(clientID, nodeID)
		require.Equal(itemIDs, queried)
		return []ids.ID{preference, queried[1]}, nil
	}))

	client := NewClient(clientID)
	client.Connect(peerID, conn)

	preferences, err := client.Query(context.Background(), peerID, 7, itemIDs)
	require.NoError(err)
	require.Equal([]ids.ID{preference, itemIDs[1]}, preferences)
}

func TestClientQueryErrors(t *testing.T) {
	peerID := ids.GenerateTestNodeID()
	itemIDs := []ids.ID{ids.GenerateTestID()}

	tests := []struct {
		name        string
		handler     handlerFunc
		connect     bool
		expectedErr error
		code        codes.Code
	}{
		{
			name:        "not connected",
			expectedErr: errNotConnected,
		},
		{
			name: "handler error",
			handler: func(context.Context, ids.NodeID, []ids.ID) ([]ids.ID, error) {
				return nil, errTest
			},
			connect: true,
			code:    codes.InvalidArgument,
		},
		{
			name: "wrong number of preferences",
			handler: func(context.Context, ids.NodeID, []ids.ID) ([]ids.ID, error) {
				return nil, nil
			},
			connect:     true,
			expectedErr: errUnexpectedResponse,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			client := NewClient(ids.GenerateTestNodeID())
			if test.connect {
				client.Connect(peerID, setupConn(t, test.handler))
			}

			_, err := client.Query(context.Background(), peerID, 1, itemIDs)
			require.Error(err)
			if test.expectedErr != nil {
				require.ErrorIs(err, test.expectedErr)
			}
			if test.code != codes.OK {
				require.Equal(test.code, status.Code(err))
			}
		})
	}
}

func TestClientDisconnect(t *testing.T) {
	require := require.New(t)

	peerID := ids.GenerateTestNodeID()
	conn := setupConn(t, handlerFunc(func(_ context.Context, _ ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error) {
		return itemIDs, nil
	}))

	client := NewClient(ids.GenerateTestNodeID())
	client.Connect(peerID, conn)
	client.Disconnect(peerID)

	_, err := client.Query(context.Background(), peerID, 1, []ids.ID{ids.GenerateTestID()})
	require.ErrorIs(err, errNotConnected)
}

func TestEngineQueriesOverGRPC(t *testing.T) {
	require := require.New(t)

	params := snowball.Parameters{
		K:                     1,
		Alpha:                 1,
		BetaVirtuous:          2,
		BetaRogue:             3,
		ConcurrentRepolls:     1,
		OptimalProcessing:     1,
		MaxOutstandingItems:   16,
		MaxItemProcessingTime: time.Minute,
		BatchSize:             4,
	}
	// Each engine gets its own copy of the same tx.
	inputIDs := []ids.ID{ids.GenerateTestID()}
	newTx := func() *avalanche.Tx {
		return avalanche.NewTx(nil, inputIDs, []byte("grpc-tx"))
	}
	tx := newTx()

	remoteID := ids.GenerateTestNodeID()
	remoteCtx := snow.DefaultConsensusContextTest()
	remoteVdrs := validators.NewSet()
	require.NoError(remoteVdrs.Add(remoteID, 1))
	remote, err := avaeng.New(avaeng.Config{
		Ctx:          remoteCtx,
		Params:       params,
		Validators:   remoteVdrs,
		Sender:       NewClient(remoteID),
		RoundTimeout: time.Second,
		RetryDelay:   time.Millisecond,
	})
	require.NoError(err)
	require.NoError(remote.Submit(context.Background(), tx))

	localCtx := snow.DefaultConsensusContextTest()
	client := NewClient(localCtx.NodeID)
	client.Connect(remoteID, setupConn(t, remote))

	localVdrs := validators.NewSet()
	require.NoError(localVdrs.Add(remoteID, 1))
	local, err := avaeng.New(avaeng.Config{
		Ctx:          localCtx,
		Params:       params,
		Validators:   localVdrs,
		Sender:       client,
		RoundTimeout: time.Second,
		RetryDelay:   time.Millisecond,
	})
	require.NoError(err)
	require.NoError(local.Submit(context.Background(), newTx()))

	for i := 0; i < params.BetaVirtuous; i++ {
		issued, err := local.Round(context.Background())
		require.NoError(err)
		require.True(issued)
	}
	require.Equal(choices.Accepted, local.Status(tx.ID()))
	require.Equal(choices.Processing, remote.Status(tx.ID()))
}
