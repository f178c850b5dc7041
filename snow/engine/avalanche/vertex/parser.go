// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vertex

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/avalanche"
)

var (
	_ Parser = (*parser)(nil)

	errWrongChainID = errors.New("wrong chain ID")
)

// Parser parses bytes into a vertex that can be added to consensus.
type Parser interface {
	ParseVtx(b []byte) (*avalanche.Vertex, error)
}

// InputIDsFunc returns the inputs consumed by the transactions of a vertex.
type InputIDsFunc func(txs [][]byte) ([]ids.ID, error)

type parser struct {
	chainID  ids.ID
	inputIDs InputIDsFunc
}

// NewParser returns a parser that only accepts vertices of [chainID].
func NewParser(chainID ids.ID, inputIDs InputIDsFunc) Parser {
	return &parser{
		chainID:  chainID,
		inputIDs: inputIDs,
	}
}

// Parse decodes and verifies a vertex.
func Parse(b []byte) (*StatelessVertex, error) {
	vtx, err := unmarshal(b)
	if err != nil {
		return nil, err
	}
	if err := vtx.Verify(); err != nil {
		return nil, err
	}
	return vtx, nil
}

func (p *parser) ParseVtx(b []byte) (*avalanche.Vertex, error) {
	vtx, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if vtx.ChainID != p.chainID {
		return nil, fmt.Errorf("%w: expected %s but got %s", errWrongChainID, p.chainID, vtx.ChainID)
	}
	inputIDs, err := p.inputIDs(vtx.Txs)
	if err != nil {
		return nil, err
	}
	return avalanche.NewVertex(
		vtx.ChainID,
		vtx.Height,
		vtx.ParentIDs,
		vtx.Txs,
		inputIDs,
		vtx.Bytes(),
	), nil
}
