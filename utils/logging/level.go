// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is a zap level with two additional levels: Trace sits between Debug
// and Info, and Verbo is below Debug.
type Level zapcore.Level

const (
	Verbo Level = iota - 9
	Debug
	Trace
	Info
	Warn
	Error
	Fatal
	Off
)

var (
	ErrUnknownLevel = errors.New("unknown log level")

	levelNames = map[Level]string{
		Verbo: "VERBO",
		Debug: "DEBUG",
		Trace: "TRACE",
		Info:  "INFO",
		Warn:  "WARN",
		Error: "ERROR",
		Fatal: "FATAL",
		Off:   "OFF",
	}
	levelColors = map[Level]Color{
		Verbo: LightGreen,
		Debug: LightBlue,
		Trace: LightPurple,
		Fatal: Red,
		Error: Orange,
		Warn:  Yellow,
	}
	namedLevels = make(map[string]Level, len(levelNames))
)

func init() {
	for level, name := range levelNames {
		namedLevels[name] = level
	}
}

// ToLevel parses a case-insensitive level name.
func ToLevel(l string) (Level, error) {
	level, ok := namedLevels[strings.ToUpper(l)]
	if !ok {
		return Off, fmt.Errorf("%w: %q", ErrUnknownLevel, l)
	}
	return level, nil
}

// Color is the terminal color used to highlight the level. Info is left
// uncolored.
func (l Level) Color() Color {
	if color, ok := levelColors[l]; ok {
		return color
	}
	return Reset
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNO"
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	level, err := ToLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
