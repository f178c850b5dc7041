// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package choices

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
)

func TestStatusValid(t *testing.T) {
	require := require.New(t)

	require.NoError(Accepted.Valid())
	require.NoError(Rejected.Valid())
	require.NoError(Processing.Valid())
	require.NoError(Unknown.Valid())

	require.ErrorIs(Status(math.MaxInt32).Valid(), errUnknownStatus)
}

func TestStatusDecided(t *testing.T) {
	require := require.New(t)

	require.True(Accepted.Decided())
	require.True(Rejected.Decided())
	require.False(Processing.Decided())
	require.False(Unknown.Decided())

	require.False(Status(math.MaxInt32).Decided())
}

func TestStatusFetched(t *testing.T) {
	require := require.New(t)

	require.True(Accepted.Fetched())
	require.True(Rejected.Fetched())
	require.True(Processing.Fetched())
	require.False(Unknown.Fetched())

	require.False(Status(math.MaxInt32).Fetched())
}

func TestStatusString(t *testing.T) {
	require := require.New(t)

	require.Equal("Accepted", Accepted.String())
	require.Equal("Rejected", Rejected.String())
	require.Equal("Processing", Processing.String())
	require.Equal("Unknown", Unknown.String())

	require.Equal("Invalid status", Status(math.MaxInt32).String())
}

func TestStatusBytes(t *testing.T) {
	require := require.New(t)

	require.Equal([]byte{0, 0, 0, 0}, Unknown.Bytes())
	require.Equal([]byte{0, 0, 0, 1}, Processing.Bytes())
	require.Equal([]byte{0, 0, 0, 2}, Rejected.Bytes())
	require.Equal([]byte{0, 0, 0, 3}, Accepted.Bytes())
}

func TestStatusJSON(t *testing.T) {
	require := require.New(t)

	b, err := Accepted.MarshalJSON()
	require.NoError(err)
	require.Equal(`"Accepted"`, string(b))

	var s Status
	require.NoError(s.UnmarshalJSON([]byte(`"Rejected"`)))
	require.Equal(Rejected, s)

	require.NoError(s.UnmarshalJSON([]byte("null")))
	require.Equal(Rejected, s)

	require.ErrorIs(s.UnmarshalJSON([]byte(`"Finished"`)), errUnknownStatus)

	_, err = Status(math.MaxInt32).MarshalJSON()
	require.ErrorIs(err, errUnknownStatus)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		legal    bool
	}{
		{Unknown, Processing, true},
		{Unknown, Accepted, false},
		{Unknown, Rejected, false},
		{Processing, Accepted, true},
		{Processing, Rejected, true},
		{Processing, Unknown, false},
		{Processing, Processing, false},
		{Accepted, Rejected, false},
		{Accepted, Accepted, false},
		{Rejected, Accepted, false},
		{Rejected, Processing, false},
	}
	for _, test := range tests {
		t.Run(test.from.String()+"->"+test.to.String(), func(t *testing.T) {
			require.Equal(t, test.legal, test.from.CanTransition(test.to))
		})
	}
}

func TestDecidableDoubleAccept(t *testing.T) {
	require := require.New(t)

	d := &TestDecidable{
		IDV:     ids.GenerateTestID(),
		StatusV: Processing,
	}
	require.NoError(d.Accept(context.Background()))
	require.Equal(Accepted, d.Status())

	require.ErrorIs(d.Accept(context.Background()), ErrInvalidStateTransition)
	require.ErrorIs(d.Reject(context.Background()), ErrInvalidStateTransition)
	require.Equal(Accepted, d.Status())
}
