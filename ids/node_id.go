// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanche-consensus/utils"
	"github.com/ava-labs/avalanche-consensus/utils/formatting"
	"github.com/ava-labs/avalanche-consensus/utils/hashing"
)

const (
	NodeIDPrefix = "NodeID-"
	NodeIDLen    = hashing.AddrLen
)

var (
	EmptyNodeID = NodeID{}

	errShortNodeID   = errors.New("insufficient NodeID length")
	errMissingPrefix = errors.New("missing NodeID prefix")

	_ utils.Sortable[NodeID] = NodeID{}
)

// NodeID identifies a peer taking part in consensus.
type NodeID [NodeIDLen]byte

// ToNodeID attempt to convert a byte slice into a node id
func ToNodeID(bytes []byte) (NodeID, error) {
	if len(bytes) != NodeIDLen {
		return NodeID{}, fmt.Errorf("%w: expected %d bytes but got %d", errWrongLength, NodeIDLen, len(bytes))
	}
	return NodeID(bytes), nil
}

// NodeIDFromPublicKey derives the node id as ripemd160(sha256(publicKey)).
func NodeIDFromPublicKey(publicKey []byte) NodeID {
	return hashing.ComputeHash160Array(hashing.ComputeHash256(publicKey))
}

// NodeIDFromString is the inverse of NodeID.String()
func NodeIDFromString(nodeIDStr string) (NodeID, error) {
	if !strings.HasPrefix(nodeIDStr, NodeIDPrefix) {
		return NodeID{}, fmt.Errorf("%w: %q", errMissingPrefix, nodeIDStr)
	}
	bytes, err := formatting.DecodeCB58(strings.TrimPrefix(nodeIDStr, NodeIDPrefix))
	if err != nil {
		return NodeID{}, err
	}
	return ToNodeID(bytes)
}

// Any modification to Bytes will be lost since id is passed-by-value
// Directly access NodeID[:] if you need to modify the NodeID
func (id NodeID) Bytes() []byte {
	return id[:]
}

func (id NodeID) String() string {
	s, _ := formatting.EncodeCB58(id[:])
	return NodeIDPrefix + s
}

func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *NodeID) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == nullStr { // If "null", do nothing
		return nil
	} else if len(str) <= 2+len(NodeIDPrefix) {
		return fmt.Errorf("%w: expected to be > %d", errShortNodeID, 2+len(NodeIDPrefix))
	}

	lastIndex := len(str) - 1
	if str[0] != '"' || str[lastIndex] != '"' {
		return errMissingQuotes
	}

	var err error
	*id, err = NodeIDFromString(str[1:lastIndex])
	return err
}

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(text []byte) error {
	return id.UnmarshalJSON([]byte(`"` + string(text) + `"`))
}

func (id NodeID) Less(other NodeID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

func (id NodeID) Compare(other NodeID) int {
	return bytes.Compare(id[:], other[:])
}
