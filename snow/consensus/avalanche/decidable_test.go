// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
)

func TestKindString(t *testing.T) {
	require := require.New(t)

	require.Equal("tx", TxKind.String())
	require.Equal("vertex", VertexKind.String())
	require.Equal("unknown", Kind(7).String())
}

func TestTxIDIsHashOfBytes(t *testing.T) {
	require := require.New(t)

	a := NewTx(nil, nil, []byte{1, 2, 3})
	b := NewTx([]ids.ID{ids.GenerateTestID()}, nil, []byte{1, 2, 3})
	c := NewTx(nil, nil, []byte{1, 2, 4})

	require.Equal(a.ID(), b.ID())
	require.NotEqual(a.ID(), c.ID())
	require.Equal(TxKind, a.Kind())
}

func TestItemAcceptRequiresAcceptedParents(t *testing.T) {
	require := require.New(t)

	parentID := ids.GenerateTestID()
	statuses := map[ids.ID]choices.Status{
		parentID: choices.Processing,
	}

	tx := newTestTx([]ids.ID{parentID})
	err := tx.Accept(context.Background())
	require.ErrorIs(err, ErrDependencyNotAccepted)

	tx.bind(func(id ids.ID) choices.Status {
		return statuses[id]
	})
	err = tx.Accept(context.Background())
	require.ErrorIs(err, ErrDependencyNotAccepted)
	require.Equal(choices.Processing, tx.Status())

	statuses[parentID] = choices.Accepted
	require.NoError(tx.Accept(context.Background()))
	require.Equal(choices.Accepted, tx.Status())

	err = tx.Accept(context.Background())
	require.ErrorIs(err, choices.ErrInvalidStateTransition)
	err = tx.Reject(context.Background())
	require.ErrorIs(err, choices.ErrInvalidStateTransition)
}

func TestItemRejectIsIdempotent(t *testing.T) {
	require := require.New(t)

	tx := newTestTx(nil)
	require.NoError(tx.Reject(context.Background()))
	require.NoError(tx.Reject(context.Background()))
	require.Equal(choices.Rejected, tx.Status())

	err := tx.Accept(context.Background())
	require.ErrorIs(err, choices.ErrInvalidStateTransition)
}
