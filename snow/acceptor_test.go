// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
)

var errTest = errors.New("non-nil error")

func TestAcceptorGroupOrder(t *testing.T) {
	require := require.New(t)

	ctx := DefaultConsensusContextTest()
	group := NewAcceptorGroup(logging.NoLog)

	var events []string
	require.NoError(group.RegisterAcceptor("first", AcceptorFunc(func(*ConsensusContext, ids.ID, []byte) error {
		events = append(events, "first")
		return nil
	}), false))
	require.NoError(group.RegisterAcceptor("second", AcceptorFunc(func(*ConsensusContext, ids.ID, []byte) error {
		events = append(events, "second")
		return nil
	}), false))
	require.NoError(group.RegisterRejector("rejector", RejectorFunc(func(*ConsensusContext, ids.ID) error {
		events = append(events, "rejected")
		return nil
	}), false))

	require.NoError(group.Accept(ctx, ids.GenerateTestID(), nil))
	require.NoError(group.Reject(ctx, ids.GenerateTestID()))
	require.Equal([]string{"first", "second", "rejected"}, events)
}

func TestAcceptorGroupDieOnError(t *testing.T) {
	require := require.New(t)

	ctx := DefaultConsensusContextTest()
	group := NewAcceptorGroup(logging.NoLog)

	failing := AcceptorFunc(func(*ConsensusContext, ids.ID, []byte) error {
		return errTest
	})
	require.NoError(group.RegisterAcceptor("tolerated", failing, false))
	require.NoError(group.Accept(ctx, ids.GenerateTestID(), nil))

	require.NoError(group.RegisterAcceptor("fatal", failing, true))
	require.ErrorIs(group.Accept(ctx, ids.GenerateTestID(), nil), errTest)

	require.NoError(group.RegisterRejector("fatalRejector", RejectorFunc(func(*ConsensusContext, ids.ID) error {
		return errTest
	}), true))
	require.ErrorIs(group.Reject(ctx, ids.GenerateTestID()), errTest)
}

func TestAcceptorGroupRegistration(t *testing.T) {
	require := require.New(t)

	group := NewAcceptorGroup(logging.NoLog)
	acceptor := AcceptorFunc(func(*ConsensusContext, ids.ID, []byte) error { return nil })

	require.NoError(group.RegisterAcceptor("a", acceptor, false))
	require.ErrorIs(group.RegisterAcceptor("a", acceptor, false), errDuplicateAcceptor)
	require.NoError(group.Deregister("a"))
	require.ErrorIs(group.Deregister("a"), errUnknownAcceptor)
	require.NoError(group.RegisterAcceptor("a", acceptor, false))
}

func TestEngineStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("Idle", Idle.String())
	require.Equal("Round in flight", RoundInFlight.String())
	require.Equal("Finalizing", Finalizing.String())
	require.Equal("Drained", Drained.String())
	require.Equal("Unknown state", EngineState(100).String())
}
