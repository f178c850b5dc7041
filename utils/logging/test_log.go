// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"io"

	"go.uber.org/zap"
)

var (
	// Discard all log entries
	NoLog Logger = noLog{}

	_ io.Writer = noLog{}
)

type noLog struct{}

func (noLog) Write([]byte) (int, error) {
	return 0, nil
}

func (noLog) Fatal(string, ...zap.Field) {}

func (noLog) Error(string, ...zap.Field) {}

func (noLog) Warn(string, ...zap.Field) {}

func (noLog) Info(string, ...zap.Field) {}

func (noLog) Trace(string, ...zap.Field) {}

func (noLog) Debug(string, ...zap.Field) {}

func (noLog) Verbo(string, ...zap.Field) {}

func (n noLog) With(...zap.Field) Logger {
	return n
}

func (noLog) SetLevel(Level) {}

func (noLog) Enabled(Level) bool {
	return false
}

func (noLog) StopOnPanic() {}

func (noLog) RecoverAndPanic(f func()) {
	f()
}

func (noLog) RecoverAndExit(f, exit func()) {
	defer exit()
	f()
}

func (noLog) Stop() {}
