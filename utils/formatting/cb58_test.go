// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package formatting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCB58(t *testing.T) {
	tests := []struct {
		bytes    []byte
		expected string
	}{
		{
			bytes:    []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 255},
			expected: "1NVSVezva3bAtJesnUj",
		},
		{
			bytes:    []byte{0},
			expected: "1c7hwa",
		},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require := require.New(t)

			str, err := EncodeCB58(test.bytes)
			require.NoError(err)
			require.Equal(test.expected, str)

			decoded, err := DecodeCB58(str)
			require.NoError(err)
			require.Equal(test.bytes, decoded)
		})
	}
}

func TestDecodeCB58Errors(t *testing.T) {
	tests := []struct {
		in          string
		expectedErr error
	}{
		{"foo", ErrMissingChecksum},
		{"foobar", ErrBadChecksum},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			_, err := DecodeCB58(test.in)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestEncodeCB58Overflow(t *testing.T) {
	_, err := EncodeCB58(make([]byte, maxCB58Size+1))
	require.ErrorIs(t, err, errEncodingOverFlow)
}

func TestDecodeCB58Empty(t *testing.T) {
	b, err := DecodeCB58("")
	require.NoError(t, err)
	require.Empty(t, b)
}
