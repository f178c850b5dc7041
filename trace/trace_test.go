// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExporterTypeFromString(t *testing.T) {
	tests := []struct {
		in          string
		expected    ExporterType
		expectedErr error
	}{
		{in: "", expected: NoOp},
		{in: "null", expected: NoOp},
		{in: "grpc", expected: GRPC},
		{in: "HTTP", expected: HTTP},
		{in: "carrier pigeon", expectedErr: ErrUnknownExporterType},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			require := require.New(t)

			exporterType, err := ExporterTypeFromString(test.in)
			require.ErrorIs(err, test.expectedErr)
			require.Equal(test.expected, exporterType)
		})
	}
}

func TestExporterTypeJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(GRPC)
	require.NoError(err)
	require.Equal(`"grpc"`, string(b))

	var exporterType ExporterType
	require.NoError(json.Unmarshal([]byte(`"http"`), &exporterType))
	require.Equal(HTTP, exporterType)

	err = json.Unmarshal([]byte(`"udp"`), &exporterType)
	require.ErrorIs(err, ErrUnknownExporterType)
}

func TestNewDisabled(t *testing.T) {
	require := require.New(t)

	tracer, err := New(Config{})
	require.NoError(err)
	require.Equal(Noop, tracer)

	_, span := tracer.Start(context.Background(), "round")
	span.End()
	require.NoError(tracer.Close())
}

func TestNewUnknownExporter(t *testing.T) {
	_, err := New(Config{
		Enabled: true,
		ExporterConfig: ExporterConfig{
			Type: NoOp,
		},
	})
	require.ErrorIs(t, err, ErrUnknownExporterType)
}

func TestNewGRPCExporter(t *testing.T) {
	require := require.New(t)

	tracer, err := New(Config{
		Enabled:         true,
		TraceSampleRate: 1,
		ExporterConfig: ExporterConfig{
			Type:     GRPC,
			Endpoint: "localhost:4317",
			Insecure: true,
		},
	})
	require.NoError(err)

	_, span := tracer.Start(context.Background(), "round")
	span.End()
}
