// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"fmt"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/set"
)

var _ Nnary = (*nnarySnowball)(nil)

func newNnarySnowball(betaVirtuous, betaRogue int, choice ids.ID) nnarySnowball {
	return nnarySnowball{
		betaVirtuous:       betaVirtuous,
		betaRogue:          betaRogue,
		preference:         choice,
		choices:            set.Of(choice),
		preferenceStrength: make(map[ids.ID]int),
	}
}

// nnarySnowball is a naive implementation of a multi-color snowball instance
type nnarySnowball struct {
	// betaVirtuous is the number of consecutive successful queries required
	// for finalization on a virtuous instance.
	betaVirtuous int

	// betaRogue is the number of consecutive successful queries required for
	// finalization on a rogue instance.
	betaRogue int

	// preference is the choice that last won a successful poll, or the
	// initial choice if no poll has been successful yet.
	preference ids.ID

	// lastChoice is the choice that the last successful poll was for
	lastChoice ids.ID

	// confidence tracks the number of consecutive successful polls for
	// [lastChoice]
	confidence int

	// choices that are still able to be decided
	choices set.Set[ids.ID]

	// preferenceStrength tracks the total number of network polls which
	// preferred each choice
	preferenceStrength map[ids.ID]int

	// rogue tracks if this instance has ever had more than one choice
	rogue bool

	// finalized prevents the state from changing after the required number
	// of consecutive polls has been reached
	finalized bool
}

func (sb *nnarySnowball) Add(choice ids.ID) {
	sb.choices.Add(choice)
	sb.rogue = sb.rogue || sb.choices.Len() > 1
}

func (sb *nnarySnowball) Remove(choice ids.ID) {
	if !sb.choices.Contains(choice) {
		return
	}
	sb.choices.Remove(choice)
	delete(sb.preferenceStrength, choice)

	if sb.lastChoice == choice {
		sb.confidence = 0
	}
	if sb.preference != choice || sb.choices.Len() == 0 {
		return
	}

	// A decision for a choice that can no longer be accepted is void.
	sb.finalized = false

	// Highest preference strength wins, ties go to the smallest ID.
	first := true
	for _, c := range set.SortedList(sb.choices) {
		if first || sb.preferenceStrength[c] > sb.preferenceStrength[sb.preference] {
			sb.preference = c
			first = false
		}
	}
}

func (sb *nnarySnowball) Preference() ids.ID {
	return sb.preference
}

func (sb *nnarySnowball) RecordSuccessfulPoll(choice ids.ID) {
	if sb.finalized {
		return // This instance is already decided.
	}

	sb.preferenceStrength[choice]++
	if sb.confidence > 0 && sb.lastChoice == choice {
		sb.confidence++
	} else {
		sb.lastChoice = choice
		sb.confidence = 1
		sb.preference = choice
	}

	sb.finalized = sb.confidence >= sb.beta()
}

func (sb *nnarySnowball) RecordUnsuccessfulPoll() {
	if sb.finalized {
		return
	}
	sb.confidence = 0
}

func (sb *nnarySnowball) Confidence() int {
	return sb.confidence
}

func (sb *nnarySnowball) Rogue() bool {
	return sb.rogue
}

func (sb *nnarySnowball) Finalized() bool {
	return sb.finalized
}

func (sb *nnarySnowball) beta() int {
	if sb.rogue {
		return sb.betaRogue
	}
	return sb.betaVirtuous
}

func (sb *nnarySnowball) String() string {
	return fmt.Sprintf("SB(Preference = %s, PreferenceStrength = %d, Confidence = %d, Rogue = %v, Finalized = %v)",
		sb.preference, sb.preferenceStrength[sb.preference], sb.confidence, sb.rogue, sb.finalized)
}
