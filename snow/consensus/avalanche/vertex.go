// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
)

// Vertex is a collection of transactions tied to other vertices. A vertex
// consumes the union of the inputs of its transactions.
type Vertex struct {
	item

	chainID ids.ID
	height  uint64
	txs     [][]byte
}

// NewVertex returns a processing vertex whose ID is the hash of [bytes].
// [bytes] is expected to be the canonical encoding of the other fields.
func NewVertex(
	chainID ids.ID,
	height uint64,
	parents []ids.ID,
	txs [][]byte,
	inputIDs []ids.ID,
	bytes []byte,
) *Vertex {
	return &Vertex{
		item: item{
			id:       ids.ID(hashing.ComputeHash256Array(bytes)),
			parents:  parents,
			inputIDs: inputIDs,
			bytes:    bytes,
			status:   choices.Processing,
		},
		chainID: chainID,
		height:  height,
		txs:     txs,
	}
}

func (*Vertex) Kind() Kind {
	return VertexKind
}

func (v *Vertex) ChainID() ids.ID {
	return v.chainID
}

// Height is one greater than the maximum height of the parents, as claimed by
// the encoding.
func (v *Vertex) Height() uint64 {
	return v.height
}

// Txs returns the serialized transactions of this vertex.
func (v *Vertex) Txs() [][]byte {
	return v.txs
}
