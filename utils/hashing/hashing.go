// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hashing

import (
	"crypto/sha256"

	// ripemd160 is only applied to the sha256 digest of a public key, which
	// keeps the input short and fixed size.
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	HashLen = sha256.Size
	AddrLen = ripemd160.Size
)

// Hash256 is the digest content IDs are derived from.
type Hash256 = [HashLen]byte

// Hash160 is the digest node IDs are derived from.
type Hash160 = [AddrLen]byte

func ComputeHash256Array(buf []byte) Hash256 {
	return sha256.Sum256(buf)
}

func ComputeHash256(buf []byte) []byte {
	hash := sha256.Sum256(buf)
	return hash[:]
}

func ComputeHash160Array(buf []byte) Hash160 {
	var hash Hash160
	copy(hash[:], ComputeHash160(buf))
	return hash
}

func ComputeHash160(buf []byte) []byte {
	h := ripemd160.New() //nolint:gosec
	// Writing to a hash never fails.
	_, _ = h.Write(buf)
	return h.Sum(nil)
}

// Checksum returns the last [length] bytes of the sha256 hash of [bytes].
//
// Panics if length > 32.
func Checksum(bytes []byte, length int) []byte {
	hash := sha256.Sum256(bytes)
	return hash[HashLen-length:]
}

// PubkeyBytesToAddress returns ripemd160(sha256(key)).
func PubkeyBytesToAddress(key []byte) []byte {
	return ComputeHash160(ComputeHash256(key))
}
