// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashing

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeHash256(t *testing.T) {
	require := require.New(t)

	// sha256("abc")
	expected, err := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	require.NoError(err)
	require.Equal(expected, ComputeHash256([]byte("abc")))

	arr := ComputeHash256Array([]byte("abc"))
	require.Equal(expected, arr[:])
}

func TestComputeHash160(t *testing.T) {
	require := require.New(t)

	// ripemd160("abc")
	expected, err := hex.DecodeString("8eb208f7e05d987a9b044a8e98c6b087f15a0bfc")
	require.NoError(err)
	require.Equal(expected, ComputeHash160([]byte("abc")))

	arr := ComputeHash160Array([]byte("abc"))
	require.Equal(expected, arr[:])
}

func TestChecksum(t *testing.T) {
	require := require.New(t)

	hash := ComputeHash256([]byte("abc"))
	require.Equal(hash[28:], Checksum([]byte("abc"), 4))
}

func TestPubkeyBytesToAddress(t *testing.T) {
	key := []byte{1, 2, 3}
	require.Equal(t, ComputeHash160(ComputeHash256(key)), PubkeyBytesToAddress(key))
}
