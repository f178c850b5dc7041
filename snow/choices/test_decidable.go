// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package choices

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
)

var (
	_ Decidable = (*TestDecidable)(nil)

	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// TestDecidable is a test Decidable
type TestDecidable struct {
	IDV              ids.ID
	AcceptV, RejectV error
	StatusV          Status
}

func (d *TestDecidable) ID() ids.ID {
	return d.IDV
}

func (d *TestDecidable) Accept(context.Context) error {
	if err := d.transition(Accepted); err != nil {
		return err
	}
	return d.AcceptV
}

func (d *TestDecidable) Reject(context.Context) error {
	if err := d.transition(Rejected); err != nil {
		return err
	}
	return d.RejectV
}

func (d *TestDecidable) Status() Status {
	return d.StatusV
}

func (d *TestDecidable) transition(next Status) error {
	if !d.StatusV.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidStateTransition, d.StatusV, next, d.IDV)
	}
	d.StatusV = next
	return nil
}
