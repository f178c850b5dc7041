// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelToString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{Verbo, "VERBO"},
		{Debug, "DEBUG"},
		{Trace, "TRACE"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
		{Fatal, "FATAL"},
		{Off, "OFF"},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require := require.New(t)

			require.Equal(test.expected, test.level.String())

			level, err := ToLevel(test.expected)
			require.NoError(err)
			require.Equal(test.level, level)
		})
	}
}

func TestToLevelUnknown(t *testing.T) {
	_, err := ToLevel("loud")
	require.ErrorIs(t, err, ErrUnknownLevel)
}

func TestLevelJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Trace)
	require.NoError(err)
	require.Equal(`"TRACE"`, string(b))

	var level Level
	require.NoError(json.Unmarshal([]byte(`"debug"`), &level))
	require.Equal(Debug, level)
}

func TestLevelOrdering(t *testing.T) {
	require := require.New(t)

	require.Less(Verbo, Debug)
	require.Less(Debug, Trace)
	require.Less(Trace, Info)
	require.Less(Info, Warn)
	require.Less(Warn, Error)
	require.Less(Error, Fatal)
	require.Less(Fatal, Off)
}

func TestToFormat(t *testing.T) {
	require := require.New(t)

	format, err := ToFormat("json", 0)
	require.NoError(err)
	require.Equal(JSON, format)

	_, err = ToFormat("fancy", 0)
	require.ErrorIs(err, errUnknownFormat)
}
