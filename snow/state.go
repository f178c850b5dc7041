// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snow

// EngineState is the phase of the consensus round loop.
type EngineState uint8

const (
	// Idle is waiting for the frontier to contain processing items.
	Idle EngineState = iota
	// RoundInFlight has queries outstanding for a batch of frontier items.
	RoundInFlight
	// Finalizing is applying a finished poll and its accept/reject cascades.
	Finalizing
	// Drained has an empty frontier and expects no further submissions.
	Drained
)

func (st EngineState) String() string {
	switch st {
	case Idle:
		return "Idle"
	case RoundInFlight:
		return "Round in flight"
	case Finalizing:
		return "Finalizing"
	case Drained:
		return "Drained"
	default:
		return "Unknown state"
	}
}
