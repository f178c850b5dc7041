// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queryrpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

func TestCodecRequestLayout(t *testing.T) {
	require := require.New(t)

	nodeID := ids.NodeID{0x01, 0x02}
	itemID := ids.ID{0xff}
	req := &QueryRequest{
		RequestID: 0x01020304,
		NodeID:    nodeID,
		ItemIDs:   []ids.ID{itemID},
	}

	b, err := Codec{}.Marshal(req)
	require.NoError(err)
	require.Len(b, wrappers.IntLen+ids.NodeIDLen+wrappers.IntLen+ids.IDLen)
	require.Equal([]byte{0x01, 0x02, 0x03, 0x04}, b[:wrappers.IntLen])
	require.Equal(nodeID[:], b[wrappers.IntLen:wrappers.IntLen+ids.NodeIDLen])
	require.Equal([]byte{0x00, 0x00, 0x00, 0x01}, b[wrappers.IntLen+ids.NodeIDLen:2*wrappers.IntLen+ids.NodeIDLen])
	require.Equal(itemID[:], b[2*wrappers.IntLen+ids.NodeIDLen:])

	parsed := new(QueryRequest)
	require.NoError(Codec{}.Unmarshal(b, parsed))
	require.Equal(req, parsed)
}

func TestCodecEmptyResponse(t *testing.T) {
	require := require.New(t)

	b, err := Codec{}.Marshal(&QueryResponse{})
	require.NoError(err)
	require.Equal([]byte{0x00, 0x00, 0x00, 0x00}, b)

	parsed := new(QueryResponse)
	require.NoError(Codec{}.Unmarshal(b, parsed))
	require.Empty(parsed.Preferences)
}

func TestCodecErrors(t *testing.T) {
	tooMany := make([]ids.ID, MaxItems+1)
	tooManyHeader := []byte{0x00, 0x00, 0x04, 0x01}

	tests := []struct {
		name        string
		marshal     interface{}
		unmarshal   []byte
		into        interface{}
		expectedErr error
	}{
		{
			name:        "marshal unknown message",
			marshal:     "query",
			expectedErr: errUnknownMessage,
		},
		{
			name:        "marshal too many items",
			marshal:     &QueryResponse{Preferences: tooMany},
			expectedErr: errTooManyItems,
		},
		{
			name:        "unmarshal unknown message",
			unmarshal:   []byte{},
			into:        new(int),
			expectedErr: errUnknownMessage,
		},
		{
			name:        "unmarshal too many items",
			unmarshal:   tooManyHeader,
			into:        new(QueryResponse),
			expectedErr: errTooManyItems,
		},
		{
			name:        "unmarshal truncated",
			unmarshal:   []byte{0x00, 0x00, 0x00, 0x01, 0x00},
			into:        new(QueryResponse),
			expectedErr: wrappers.ErrInsufficientLength,
		},
		{
			name:        "unmarshal trailing bytes",
			unmarshal:   []byte{0x00, 0x00, 0x00, 0x00, 0x00},
			into:        new(QueryResponse),
			expectedErr: errTrailingBytes,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var err error
			if test.marshal != nil {
				_, err = Codec{}.Marshal(test.marshal)
			} else {
				err = Codec{}.Unmarshal(test.unmarshal, test.into)
			}
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}
