// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

// Zero returns the zero value of T.
func Zero[T any]() T {
	var zero T
	return zero
}
