// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vertex

import (
	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
)

// Build a new stateless vertex from the contents of a vertex. [parentIDs] and
// [txs] are sorted in place.
func Build(
	chainID ids.ID,
	height uint64,
	parentIDs []ids.ID,
	txs [][]byte,
) (*StatelessVertex, error) {
	utils.Sort(parentIDs)
	utils.SortByHash(txs)

	vtx := &StatelessVertex{
		Version:   CodecVersion,
		ChainID:   chainID,
		Height:    height,
		Epoch:     0,
		ParentIDs: parentIDs,
		Txs:       txs,
	}
	if err := vtx.Verify(); err != nil {
		return nil, err
	}

	vtxBytes, err := vtx.marshal()
	if err != nil {
		return nil, err
	}
	vtx.id = ids.ID(hashing.ComputeHash256Array(vtxBytes))
	vtx.bytes = vtxBytes
	return vtx, nil
}
