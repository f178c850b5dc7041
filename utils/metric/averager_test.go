// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestAverager(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	a, err := NewAverager("test", "latency", "latency of something", reg)
	require.NoError(err)

	a.Observe(2)
	a.Observe(4)

	families, err := reg.Gather()
	require.NoError(err)
	require.Len(families, 2)

	values := make(map[string]float64)
	for _, family := range families {
		metric := family.GetMetric()[0]
		switch {
		case metric.GetCounter() != nil:
			values[family.GetName()] = metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			values[family.GetName()] = metric.GetGauge().GetValue()
		}
	}
	require.Equal(map[string]float64{
		"test_latency_count": 2,
		"test_latency_sum":   6,
	}, values)

	_, err = NewAverager("test", "latency", "latency of something", reg)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	require.ErrorAs(err, &alreadyRegistered)
}

func TestAppendNamespace(t *testing.T) {
	tests := []struct {
		prefix   string
		suffix   string
		expected string
	}{
		{prefix: "avalanche", suffix: "consensus", expected: "avalanche_consensus"},
		{prefix: "", suffix: "consensus", expected: "consensus"},
		{prefix: "avalanche", suffix: "", expected: "avalanche"},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require.Equal(t, test.expected, AppendNamespace(test.prefix, test.suffix))
		})
	}
}
