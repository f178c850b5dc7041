// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vertex

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

const (
	// CodecVersion is the only version this codec reads and writes.
	CodecVersion uint16 = 0

	maxNumParents = 128
	maxTxsPerVtx  = 128
	maxTxSize     = 1 << 20
	maxVtxSize    = 2 << 20
)

var (
	errBadVersion       = errors.New("invalid codec version")
	errBadEpoch         = errors.New("invalid epoch")
	errTooManyParentIDs = fmt.Errorf("vertex contains more than %d parentIDs", maxNumParents)
	errNoTxs            = errors.New("vertex contains no transactions")
	errTooManyTxs       = fmt.Errorf("vertex contains more than %d transactions", maxTxsPerVtx)
	errInvalidParents   = errors.New("vertex contains non-sorted or duplicated parentIDs")
	errInvalidTxs       = errors.New("vertex contains non-sorted or duplicated transactions")
	errTrailingBytes    = errors.New("vertex has trailing bytes")
)

// StatelessVertex is the decoded form of a vertex.
type StatelessVertex struct {
	id    ids.ID
	bytes []byte

	Version   uint16
	ChainID   ids.ID
	Height    uint64
	Epoch     uint32
	ParentIDs []ids.ID
	Txs       [][]byte
}

func (v *StatelessVertex) ID() ids.ID {
	return v.id
}

func (v *StatelessVertex) Bytes() []byte {
	return v.bytes
}

func (v *StatelessVertex) Verify() error {
	switch {
	case v.Version != CodecVersion:
		return fmt.Errorf("%w: %d", errBadVersion, v.Version)
	case v.Epoch != 0:
		return fmt.Errorf("%w: %d", errBadEpoch, v.Epoch)
	case len(v.ParentIDs) > maxNumParents:
		return errTooManyParentIDs
	case len(v.Txs) == 0:
		return errNoTxs
	case len(v.Txs) > maxTxsPerVtx:
		return errTooManyTxs
	case !utils.IsSortedAndUnique(v.ParentIDs):
		return errInvalidParents
	case !utils.IsSortedAndUniqueByHash(v.Txs):
		return errInvalidTxs
	default:
		return nil
	}
}

func (v *StatelessVertex) marshal() ([]byte, error) {
	p := wrappers.Packer{
		MaxSize: maxVtxSize,
		Bytes:   make([]byte, 0, 128),
	}
	p.PackShort(v.Version)
	p.PackFixedBytes(v.ChainID[:])
	p.PackLong(v.Height)
	p.PackInt(v.Epoch)
	p.PackInt(uint32(len(v.ParentIDs)))
	for _, parentID := range v.ParentIDs {
		p.PackFixedBytes(parentID[:])
	}
	p.PackInt(uint32(len(v.Txs)))
	for _, tx := range v.Txs {
		p.PackBytes(tx)
	}
	return p.Bytes, p.Err
}

// unmarshal decodes [b] without checking that the result is well formed.
func unmarshal(b []byte) (*StatelessVertex, error) {
	p := wrappers.Packer{Bytes: b}
	vtx := &StatelessVertex{
		Version: p.UnpackShort(),
	}
	if p.Errored() {
		return nil, p.Err
	}
	if vtx.Version != CodecVersion {
		return nil, fmt.Errorf("%w: %d", errBadVersion, vtx.Version)
	}

	copy(vtx.ChainID[:], p.UnpackFixedBytes(ids.IDLen))
	vtx.Height = p.UnpackLong()
	vtx.Epoch = p.UnpackInt()

	numParents := p.UnpackInt()
	if numParents > maxNumParents {
		return nil, errTooManyParentIDs
	}
	vtx.ParentIDs = make([]ids.ID, numParents)
	for i := range vtx.ParentIDs {
		copy(vtx.ParentIDs[i][:], p.UnpackFixedBytes(ids.IDLen))
	}

	numTxs := p.UnpackInt()
	if numTxs > maxTxsPerVtx {
		return nil, errTooManyTxs
	}
	vtx.Txs = make([][]byte, numTxs)
	for i := range vtx.Txs {
		vtx.Txs[i] = p.UnpackLimitedBytes(maxTxSize)
	}

	if p.Errored() {
		return nil, p.Err
	}
	if p.Offset != len(b) {
		return nil, fmt.Errorf("%w: %d", errTrailingBytes, len(b)-p.Offset)
	}

	vtx.id = ids.ID(hashing.ComputeHash256Array(b))
	vtx.bytes = b
	return vtx, nil
}
