// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
)

// Tx is a transaction placed directly in the DAG. Its contents are opaque;
// only its dependencies and the inputs it consumes matter to consensus.
type Tx struct {
	item
}

// NewTx returns a processing transaction whose ID is the hash of [bytes].
func NewTx(parents []ids.ID, inputIDs []ids.ID, bytes []byte) *Tx {
	return &Tx{
		item: item{
			id:       ids.ID(hashing.ComputeHash256Array(bytes)),
			parents:  parents,
			inputIDs: inputIDs,
			bytes:    bytes,
			status:   choices.Processing,
		},
	}
}

func (*Tx) Kind() Kind {
	return TxKind
}
