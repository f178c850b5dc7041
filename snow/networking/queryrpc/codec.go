// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queryrpc

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/encoding"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

const (
	codecName = "avalanche-query"

	// MaxItems is the largest number of IDs carried by a single message.
	MaxItems = 1024

	maxMessageSize = wrappers.IntLen + ids.NodeIDLen + wrappers.IntLen + MaxItems*ids.IDLen
)

var (
	_ encoding.Codec = Codec{}

	errUnknownMessage = errors.New("unknown message type")
	errTooManyItems   = errors.New("too many items")
	errTrailingBytes  = errors.New("trailing bytes")
)

// QueryRequest asks a peer for its preference for each of ItemIDs.
type QueryRequest struct {
	RequestID uint32
	NodeID    ids.NodeID
	ItemIDs   []ids.ID
}

// QueryResponse holds one preference per queried item, in request order.
type QueryResponse struct {
	Preferences []ids.ID
}

// Codec encodes query messages with a Packer. All numbers are big-endian.
//
// QueryRequest:  u32 requestID | [20]nodeID | u32 numItems | numItems*[32]itemID
// QueryResponse: u32 numPreferences | numPreferences*[32]preference
type Codec struct{}

func (Codec) Name() string {
	return codecName
}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	p := wrappers.Packer{MaxSize: maxMessageSize}
	switch msg := v.(type) {
	case *QueryRequest:
		p.PackInt(msg.RequestID)
		p.PackFixedBytes(msg.NodeID[:])
		packIDs(&p, msg.ItemIDs)
	case *QueryResponse:
		packIDs(&p, msg.Preferences)
	default:
		return nil, fmt.Errorf("%w: %T", errUnknownMessage, v)
	}
	if p.Errored() {
		return nil, p.Err
	}
	return p.Bytes, nil
}

func (Codec) Unmarshal(b []byte, v interface{}) error {
	p := wrappers.Packer{Bytes: b}
	switch msg := v.(type) {
	case *QueryRequest:
		msg.RequestID = p.UnpackInt()
		copy(msg.NodeID[:], p.UnpackFixedBytes(ids.NodeIDLen))
		msg.ItemIDs = unpackIDs(&p)
	case *QueryResponse:
		msg.Preferences = unpackIDs(&p)
	default:
		return fmt.Errorf("%w: %T", errUnknownMessage, v)
	}
	if p.Errored() {
		return p.Err
	}
	if p.Offset != len(b) {
		return fmt.Errorf("%w: %d", errTrailingBytes, len(b)-p.Offset)
	}
	return nil
}

func packIDs(p *wrappers.Packer, idList []ids.ID) {
	if len(idList) > MaxItems {
		p.Add(fmt.Errorf("%w: %d > %d", errTooManyItems, len(idList), MaxItems))
		return
	}
	p.PackInt(uint32(len(idList)))
	for _, id := range idList {
		p.PackFixedBytes(id[:])
	}
}

func unpackIDs(p *wrappers.Packer) []ids.ID {
	numIDs := p.UnpackInt()
	if numIDs > MaxItems {
		p.Add(fmt.Errorf("%w: %d > %d", errTooManyItems, numIDs, MaxItems))
		return nil
	}
	idList := make([]ids.ID, 0, numIDs)
	for i := uint32(0); i < numIDs && !p.Errored(); i++ {
		var id ids.ID
		copy(id[:], p.UnpackFixedBytes(ids.IDLen))
		idList = append(idList, id)
	}
	return idList
}
