// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package choices

import (
	"errors"

	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

var errUnknownStatus = errors.New("unknown status")

// Status is the lifecycle position of a decidable item.
//
// The only legal transitions are
// Unknown -> Processing, Processing -> Accepted and Processing -> Rejected.
type Status uint32

// List of possible status values
// [Unknown] Zero value, means the item has not been submitted
// [Processing] Submitted and undecided
// [Rejected] Decided as rejected
// [Accepted] Decided as accepted
const (
	Unknown Status = iota
	Processing
	Rejected
	Accepted
)

func (s Status) MarshalJSON() ([]byte, error) {
	if err := s.Valid(); err != nil {
		return nil, err
	}
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		return nil
	}
	switch str {
	case `"Unknown"`:
		*s = Unknown
	case `"Processing"`:
		*s = Processing
	case `"Rejected"`:
		*s = Rejected
	case `"Accepted"`:
		*s = Accepted
	default:
		return errUnknownStatus
	}
	return nil
}

// Valid returns nil if the status is a valid status.
func (s Status) Valid() error {
	switch s {
	case Unknown, Processing, Rejected, Accepted:
		return nil
	default:
		return errUnknownStatus
	}
}

// Decided returns true if the status is Rejected or Accepted.
func (s Status) Decided() bool {
	switch s {
	case Rejected, Accepted:
		return true
	default:
		return false
	}
}

// Fetched returns true if the status has been set.
func (s Status) Fetched() bool {
	switch s {
	case Processing:
		return true
	default:
		return s.Decided()
	}
}

// CanTransition reports whether moving from [s] to [next] is legal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case Unknown:
		return next == Processing
	case Processing:
		return next == Accepted || next == Rejected
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Processing:
		return "Processing"
	case Rejected:
		return "Rejected"
	case Accepted:
		return "Accepted"
	default:
		return "Invalid status"
	}
}

// Bytes returns the byte repr. of this status
func (s Status) Bytes() []byte {
	p := wrappers.Packer{Bytes: make([]byte, wrappers.IntLen)}
	p.PackInt(uint32(s))
	return p.Bytes
}
