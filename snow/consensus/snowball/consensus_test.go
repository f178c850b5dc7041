// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snowball

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
)

var (
	Red   = ids.Empty.Prefix(0)
	Blue  = ids.Empty.Prefix(1)
	Green = ids.Empty.Prefix(2)
)

// recordPolls records [numPolls] identical polls of [votes] and reports
// whether each one was successful.
func recordPolls(sb Consensus, numPolls int, votes bag.Bag[ids.ID]) []bool {
	results := make([]bool, numPolls)
	for i := range results {
		results[i] = sb.RecordPoll(votes)
	}
	return results
}

func TestFactoriesFinalizeUnanimousPolls(t *testing.T) {
	params := Parameters{
		K:                     3,
		Alpha:                 2,
		BetaVirtuous:          2,
		BetaRogue:             4,
		ConcurrentRepolls:     1,
		OptimalProcessing:     1,
		MaxOutstandingItems:   1,
		MaxItemProcessingTime: 1,
		BatchSize:             1,
	}
	tests := map[string]struct {
		addConflict   bool
		expectedPolls int
	}{
		"virtuous": {
			expectedPolls: params.BetaVirtuous,
		},
		"rogue": {
			addConflict:   true,
			expectedPolls: params.BetaRogue,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			sb := NewFlat(SnowballFactory, params, Red)
			if test.addConflict {
				sb.Add(Blue)
			}

			results := recordPolls(sb, test.expectedPolls-1, bag.Of(Red, Red, Red))
			for _, successful := range results {
				require.True(successful)
			}
			require.False(sb.Finalized())

			require.True(sb.RecordPoll(bag.Of(Red, Red)))
			require.True(sb.Finalized())
			require.Equal(Red, sb.Preference())
		})
	}
}
