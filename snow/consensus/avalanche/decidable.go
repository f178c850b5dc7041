// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
)

var (
	_ Decidable = (*Tx)(nil)
	_ Decidable = (*Vertex)(nil)

	ErrDependencyNotAccepted = errors.New("dependency not accepted")
)

// Kind identifies the concrete variant of a Decidable.
type Kind uint8

const (
	TxKind Kind = iota
	VertexKind
)

func (k Kind) String() string {
	switch k {
	case TxKind:
		return "tx"
	case VertexKind:
		return "vertex"
	default:
		return "unknown"
	}
}

// Decidable is an item of the DAG. The only implementations are *Tx and
// *Vertex.
type Decidable interface {
	choices.Decidable

	Kind() Kind

	// Parents returns the IDs of the items that must be accepted before this
	// item can be accepted.
	Parents() []ids.ID

	// InputIDs returns the IDs this item consumes. Two items conflict if they
	// consume a common input.
	InputIDs() []ids.ID

	// Bytes returns the binary representation of this item.
	Bytes() []byte

	// bind installs the lookup used to verify that the parents are accepted.
	bind(parentStatus func(ids.ID) choices.Status)
}

type item struct {
	id       ids.ID
	parents  []ids.ID
	inputIDs []ids.ID
	bytes    []byte
	status   choices.Status

	parentStatus func(ids.ID) choices.Status
}

func (i *item) ID() ids.ID {
	return i.id
}

func (i *item) Parents() []ids.ID {
	return i.parents
}

func (i *item) InputIDs() []ids.ID {
	return i.inputIDs
}

func (i *item) Bytes() []byte {
	return i.bytes
}

func (i *item) Status() choices.Status {
	return i.status
}

func (i *item) bind(parentStatus func(ids.ID) choices.Status) {
	i.parentStatus = parentStatus
}

// Accept marks the item as accepted. Every parent must already be accepted.
func (i *item) Accept(context.Context) error {
	if !i.status.CanTransition(choices.Accepted) {
		return fmt.Errorf("%w: can't accept %s item %s", choices.ErrInvalidStateTransition, i.status, i.id)
	}
	for _, parentID := range i.parents {
		if i.parentStatus == nil || i.parentStatus(parentID) != choices.Accepted {
			return fmt.Errorf("%w: %s depends on %s", ErrDependencyNotAccepted, i.id, parentID)
		}
	}
	i.status = choices.Accepted
	return nil
}

// Reject marks the item as rejected. Rejecting a rejected item is a no-op.
func (i *item) Reject(context.Context) error {
	switch i.status {
	case choices.Rejected:
		return nil
	case choices.Accepted:
		return fmt.Errorf("%w: can't reject accepted item %s", choices.ErrInvalidStateTransition, i.id)
	}
	i.status = choices.Rejected
	return nil
}
