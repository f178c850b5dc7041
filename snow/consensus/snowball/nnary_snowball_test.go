// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNnarySnowball(t *testing.T) {
	require := require.New(t)

	betaVirtuous, betaRogue := 1, 2

	sb := newNnarySnowball(betaVirtuous, betaRogue, Red)
	sb.Add(Blue)
	sb.Add(Green)

	require.Equal(Red, sb.Preference())
	require.True(sb.Rogue())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.Equal(1, sb.Confidence())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Red)
	require.Equal(Red, sb.Preference())
	require.Equal(1, sb.Confidence())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.Equal(1, sb.Confidence())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.Equal(2, sb.Confidence())
	require.True(sb.Finalized())

	// Polls after finalization are ignored.
	sb.RecordSuccessfulPoll(Red)
	sb.RecordUnsuccessfulPoll()
	require.Equal(Blue, sb.Preference())
	require.Equal(2, sb.Confidence())
	require.True(sb.Finalized())
}

func TestVirtuousNnarySnowball(t *testing.T) {
	require := require.New(t)

	betaVirtuous, betaRogue := 1, 2

	sb := newNnarySnowball(betaVirtuous, betaRogue, Red)

	require.Equal(Red, sb.Preference())
	require.False(sb.Rogue())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Red)
	require.Equal(Red, sb.Preference())
	require.True(sb.Finalized())
}

func TestNarySnowballRecordUnsuccessfulPoll(t *testing.T) {
	require := require.New(t)

	betaVirtuous, betaRogue := 2, 2

	sb := newNnarySnowball(betaVirtuous, betaRogue, Red)
	sb.Add(Blue)

	require.Equal(Red, sb.Preference())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.False(sb.Finalized())

	sb.RecordUnsuccessfulPoll()
	require.Zero(sb.Confidence())
	require.Equal(Blue, sb.Preference())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Blue)
	require.Equal(Blue, sb.Preference())
	require.True(sb.Finalized())

	for i := 0; i < 4; i++ {
		sb.RecordSuccessfulPoll(Red)

		require.Equal(Blue, sb.Preference())
		require.True(sb.Finalized())
	}
}

func TestNarySnowballRogueIsSticky(t *testing.T) {
	require := require.New(t)

	betaVirtuous, betaRogue := 1, 3

	sb := newNnarySnowball(betaVirtuous, betaRogue, Red)
	sb.Add(Blue)
	sb.Remove(Blue)

	require.True(sb.Rogue())

	sb.RecordSuccessfulPoll(Red)
	sb.RecordSuccessfulPoll(Red)
	require.False(sb.Finalized())

	sb.RecordSuccessfulPoll(Red)
	require.True(sb.Finalized())
}

func TestNarySnowballRemovePreference(t *testing.T) {
	require := require.New(t)

	betaVirtuous, betaRogue := 5, 5

	sb := newNnarySnowball(betaVirtuous, betaRogue, Red)
	sb.Add(Blue)
	sb.Add(Green)

	sb.RecordSuccessfulPoll(Green)
	sb.RecordSuccessfulPoll(Blue)
	sb.RecordSuccessfulPoll(Green)
	sb.RecordSuccessfulPoll(Red)
	require.Equal(Red, sb.Preference())

	// Green has the strongest history.
	sb.Remove(Red)
	require.Equal(Green, sb.Preference())
	require.Zero(sb.Confidence())

	// Removing an unknown choice does nothing.
	sb.Remove(Red)
	require.Equal(Green, sb.Preference())

	sb.Remove(Green)
	require.Equal(Blue, sb.Preference())
}

func TestNarySnowballRemovePreferenceTie(t *testing.T) {
	require := require.New(t)

	sb := newNnarySnowball(5, 5, Red)
	sb.Add(Blue)
	sb.Add(Green)

	sb.Remove(Red)

	expected := Blue
	if Green.Less(Blue) {
		expected = Green
	}
	require.Equal(expected, sb.Preference())
}

func TestNnarySnowballString(t *testing.T) {
	require := require.New(t)

	sb := newNnarySnowball(1, 2, Red)
	sb.Add(Blue)
	sb.RecordSuccessfulPoll(Blue)

	require.Equal(
		"SB(Preference = "+Blue.String()+", PreferenceStrength = 1, Confidence = 1, Rogue = true, Finalized = false)",
		sb.String(),
	)
}

func TestNarySnowballRemoveFinalizedPreference(t *testing.T) {
	require := require.New(t)

	sb := newNnarySnowball(1, 2, Red)
	sb.Add(Blue)

	sb.RecordSuccessfulPoll(Red)
	sb.RecordSuccessfulPoll(Red)
	require.True(sb.Finalized())

	// Removing a losing choice keeps the decision.
	sb.Add(Green)
	sb.Remove(Green)
	require.True(sb.Finalized())

	sb.Remove(Red)
	require.False(sb.Finalized())
	require.Equal(Blue, sb.Preference())
	require.Zero(sb.Confidence())

	sb.RecordSuccessfulPoll(Blue)
	require.False(sb.Finalized())
	sb.RecordSuccessfulPoll(Blue)
	require.True(sb.Finalized())
}
