// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/sampler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectedErr error
	}{
		{
			name:        "valid",
			config:      Config{Latency: time.Millisecond, DropProbability: 0.5},
			expectedErr: nil,
		},
		{
			name:        "negative latency",
			config:      Config{Latency: -1},
			expectedErr: errNegativeLatency,
		},
		{
			name:        "negative jitter",
			config:      Config{Jitter: -1},
			expectedErr: errNegativeLatency,
		},
		{
			name:        "drop probability too large",
			config:      Config{DropProbability: 1.5},
			expectedErr: errInvalidDrop,
		},
		{
			name:        "negative rate limit",
			config:      Config{InboundRateLimit: -1},
			expectedErr: errNegativeRateLimit,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Verify()
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestNetworkDeliversQueries(t *testing.T) {
	require := require.New(t)

	network, err := NewNetwork(Config{Latency: time.Millisecond}, logging.NoLog)
	require.NoError(err)
	defer network.Close()

	var (
		from   = ids.GenerateTestNodeID()
		to     = ids.GenerateTestNodeID()
		choice = ids.GenerateTestID()
	)
	require.NoError(network.Register(to, NewFixed(choice)))
	err = network.Register(to, NewFixed(choice))
	require.ErrorIs(err, errDuplicateNode)

	sender := network.Sender(from)
	start := time.Now()
	votes, err := sender.Query(context.Background(), to, 1, []ids.ID{ids.GenerateTestID(), ids.GenerateTestID()})
	require.NoError(err)
	require.Equal([]ids.ID{choice, choice}, votes)
	require.GreaterOrEqual(time.Since(start), 2*time.Millisecond)

	_, err = sender.Query(context.Background(), ids.GenerateTestNodeID(), 2, nil)
	require.ErrorIs(err, errUnknownNode)
}

func TestNetworkDroppedQueryTimesOut(t *testing.T) {
	require := require.New(t)

	network, err := NewNetwork(Config{DropProbability: 1}, logging.NoLog)
	require.NoError(err)
	defer network.Close()

	to := ids.GenerateTestNodeID()
	require.NoError(network.Register(to, NewFixed(ids.Empty)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = network.Sender(ids.GenerateTestNodeID()).Query(ctx, to, 1, []ids.ID{ids.GenerateTestID()})
	require.ErrorIs(err, context.DeadlineExceeded)
}

func TestNetworkCloseUnblocksQueries(t *testing.T) {
	require := require.New(t)

	network, err := NewNetwork(Config{DropProbability: 1}, logging.NoLog)
	require.NoError(err)

	to := ids.GenerateTestNodeID()
	require.NoError(network.Register(to, NewFixed(ids.Empty)))

	done := make(chan error, 1)
	go func() {
		_, err := network.Sender(ids.GenerateTestNodeID()).Query(context.Background(), to, 1, []ids.ID{ids.GenerateTestID()})
		done <- err
	}()

	network.Close()
	require.ErrorIs(<-done, errClosed)

	err = network.Register(ids.GenerateTestNodeID(), NewFixed(ids.Empty))
	require.ErrorIs(err, errClosed)
	_, err = network.Sender(ids.GenerateTestNodeID()).Query(context.Background(), to, 2, nil)
	require.ErrorIs(err, errClosed)

	// Closing twice is a no-op.
	network.Close()
}

func TestNetworkInboundRateLimit(t *testing.T) {
	require := require.New(t)

	network, err := NewNetwork(Config{
		InboundRateLimit: 0.001,
		InboundBurst:     2,
	}, logging.NoLog)
	require.NoError(err)
	defer network.Close()

	to := ids.GenerateTestNodeID()
	require.NoError(network.Register(to, NewFixed(ids.Empty)))

	sender := network.Sender(ids.GenerateTestNodeID())
	for i := uint32(0); i < 2; i++ {
		_, err := sender.Query(context.Background(), to, i, []ids.ID{ids.GenerateTestID()})
		require.NoError(err)
	}
	_, err = sender.Query(context.Background(), to, 2, []ids.ID{ids.GenerateTestID()})
	require.ErrorIs(err, errThrottled)
}

func TestRandomVotesForQueriedItems(t *testing.T) {
	require := require.New(t)

	handler := NewRandom(sampler.NewSource(0))
	itemIDs := []ids.ID{ids.GenerateTestID(), ids.GenerateTestID(), ids.GenerateTestID()}
	for i := 0; i < 10; i++ {
		votes, err := handler.HandleQuery(context.Background(), ids.GenerateTestNodeID(), itemIDs)
		require.NoError(err)
		require.Len(votes, len(itemIDs))
		for _, vote := range votes {
			require.Contains(itemIDs, vote)
		}
	}
}
