// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"encoding"
	"errors"
	"fmt"
	"strings"
)

const (
	NoOp ExporterType = iota
	GRPC
	HTTP
)

var (
	_ encoding.TextMarshaler   = NoOp
	_ encoding.TextUnmarshaler = (*ExporterType)(nil)

	ErrUnknownExporterType = errors.New("unknown exporter type")

	// "null" is accepted so a config file can spell out a disabled exporter.
	exporterTypes = map[string]ExporterType{
		"":     NoOp,
		"null": NoOp,
		"grpc": GRPC,
		"http": HTTP,
	}
)

// ExporterType selects the protocol spans are exported with.
type ExporterType byte

func ExporterTypeFromString(s string) (ExporterType, error) {
	exporterType, ok := exporterTypes[strings.ToLower(s)]
	if !ok {
		return NoOp, fmt.Errorf("%w: %q", ErrUnknownExporterType, s)
	}
	return exporterType, nil
}

func (t ExporterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ExporterType) UnmarshalText(b []byte) error {
	exporterType, err := ExporterTypeFromString(string(b))
	if err != nil {
		return err
	}
	*t = exporterType
	return nil
}

func (t ExporterType) String() string {
	switch t {
	case NoOp:
		return ""
	case GRPC:
		return "grpc"
	case HTTP:
		return "http"
	default:
		return "unknown"
	}
}
