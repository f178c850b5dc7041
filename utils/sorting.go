// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"bytes"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/avalanche-consensus/utils/hashing"
)

type Sortable[T any] interface {
	Less(T) bool
}

// Sort sorts the elements of [s].
func Sort[T Sortable[T]](s []T) {
	slices.SortFunc(s, T.Less)
}

// SortByHash sorts the elements of [s] by their sha256 hashes.
func SortByHash[T ~[]byte](s []T) {
	slices.SortFunc(s, func(i, j T) bool {
		iHash := hashing.ComputeHash256Array(i)
		jHash := hashing.ComputeHash256Array(j)
		return bytes.Compare(iHash[:], jHash[:]) < 0
	})
}

// IsSortedAndUnique returns true iff the elements in [s] are unique and
// sorted.
func IsSortedAndUnique[T Sortable[T]](s []T) bool {
	for i := 0; i < len(s)-1; i++ {
		if !s[i].Less(s[i+1]) {
			return false
		}
	}
	return true
}

// IsSortedAndUniqueOrdered returns true iff the elements in [s] are unique and
// sorted.
func IsSortedAndUniqueOrdered[T constraints.Ordered](s []T) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] >= s[i+1] {
			return false
		}
	}
	return true
}

// IsSortedAndUniqueByHash returns true iff the elements in [s] are unique and
// sorted by their sha256 hashes.
func IsSortedAndUniqueByHash[T ~[]byte](s []T) bool {
	if len(s) <= 1 {
		return true
	}
	rightHash := hashing.ComputeHash256Array(s[0])
	for i := 1; i < len(s); i++ {
		leftHash := rightHash
		rightHash = hashing.ComputeHash256Array(s[i])
		if bytes.Compare(leftHash[:], rightHash[:]) != -1 {
			return false
		}
	}
	return true
}
