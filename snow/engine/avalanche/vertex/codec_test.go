// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vertex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

func TestBuildLayout(t *testing.T) {
	require := require.New(t)

	chainID := ids.ID{1}
	parentID := ids.ID{2}
	vtx, err := Build(chainID, 3, []ids.ID{parentID}, [][]byte{{4, 5}})
	require.NoError(err)

	expected := []byte{
		// codec version
		0x00, 0x00,
	}
	expected = append(expected, chainID[:]...)
	expected = append(expected,
		// height
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03,
		// epoch
		0x00, 0x00, 0x00, 0x00,
		// number of parents
		0x00, 0x00, 0x00, 0x01,
	)
	expected = append(expected, parentID[:]...)
	expected = append(expected,
		// number of txs
		0x00, 0x00, 0x00, 0x01,
		// tx length
		0x00, 0x00, 0x00, 0x02,
		// tx
		0x04, 0x05,
	)
	require.Equal(expected, vtx.Bytes())
	require.Equal(ids.ID(hashing.ComputeHash256Array(expected)), vtx.ID())

	parsed, err := Parse(vtx.Bytes())
	require.NoError(err)
	require.Equal(vtx, parsed)
}

func TestBuildSorts(t *testing.T) {
	require := require.New(t)

	parentIDs := []ids.ID{{3}, {1}, {2}}
	txs := [][]byte{{0}, {1}, {2}, {3}}
	vtx, err := Build(ids.Empty, 0, parentIDs, txs)
	require.NoError(err)
	require.Equal([]ids.ID{{1}, {2}, {3}}, vtx.ParentIDs)
	require.NoError(vtx.Verify())
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name        string
		parentIDs   []ids.ID
		txs         [][]byte
		expectedErr error
	}{
		{
			name:        "no txs",
			expectedErr: errNoTxs,
		},
		{
			name:        "too many parents",
			parentIDs:   make([]ids.ID, maxNumParents+1),
			txs:         [][]byte{{}},
			expectedErr: errTooManyParentIDs,
		},
		{
			name:        "duplicate parents",
			parentIDs:   []ids.ID{{1}, {1}},
			txs:         [][]byte{{}},
			expectedErr: errInvalidParents,
		},
		{
			name:        "too many txs",
			txs:         make([][]byte, maxTxsPerVtx+1),
			expectedErr: errTooManyTxs,
		},
		{
			name:        "duplicate txs",
			txs:         [][]byte{{1}, {1}},
			expectedErr: errInvalidTxs,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(ids.Empty, 0, test.parentIDs, test.txs)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	vtx, err := Build(ids.Empty, 0, []ids.ID{{1}, {2}}, [][]byte{{1}, {2}})
	require.NoError(t, err)
	valid := vtx.Bytes()

	withVersion := append([]byte{}, valid...)
	withVersion[1] = 1

	withEpoch := append([]byte{}, valid...)
	withEpoch[2+ids.IDLen+8+3] = 1

	unsortedParents := append([]byte{}, valid...)
	parentsOffset := 2 + ids.IDLen + 8 + 4 + 4
	unsortedParents[parentsOffset] = 2
	unsortedParents[parentsOffset+ids.IDLen] = 1

	tests := []struct {
		name        string
		bytes       []byte
		expectedErr error
	}{
		{
			name:        "bad version",
			bytes:       withVersion,
			expectedErr: errBadVersion,
		},
		{
			name:        "bad epoch",
			bytes:       withEpoch,
			expectedErr: errBadEpoch,
		},
		{
			name:        "unsorted parents",
			bytes:       unsortedParents,
			expectedErr: errInvalidParents,
		},
		{
			name:        "trailing bytes",
			bytes:       append(append([]byte{}, valid...), 0),
			expectedErr: errTrailingBytes,
		},
		{
			name:        "truncated",
			bytes:       valid[:len(valid)-1],
			expectedErr: wrappers.ErrInsufficientLength,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.bytes)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestParserParseVtx(t *testing.T) {
	require := require.New(t)

	chainID := ids.GenerateTestID()
	inputID := ids.GenerateTestID()
	p := NewParser(chainID, func(txs [][]byte) ([]ids.ID, error) {
		require.Len(txs, 1)
		return []ids.ID{inputID}, nil
	})

	parentID := ids.GenerateTestID()
	built, err := Build(chainID, 7, []ids.ID{parentID}, [][]byte{{9}})
	require.NoError(err)

	vtx, err := p.ParseVtx(built.Bytes())
	require.NoError(err)
	require.Equal(built.ID(), vtx.ID())
	require.Equal(uint64(7), vtx.Height())
	require.Equal([]ids.ID{parentID}, vtx.Parents())
	require.Equal([]ids.ID{inputID}, vtx.InputIDs())
	require.Equal(choices.Processing, vtx.Status())

	other, err := Build(ids.GenerateTestID(), 0, nil, [][]byte{{9}})
	require.NoError(err)
	_, err = p.ParseVtx(other.Bytes())
	require.ErrorIs(err, errWrongChainID)
}
