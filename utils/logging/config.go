// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

// RotatingWriterConfig configures the lumberjack file writer.
type RotatingWriterConfig struct {
	// MaxSize is the size in megabytes of a log file before it is rotated.
	MaxSize int `json:"maxSize"`
	// MaxFiles is the number of rotated files to retain.
	MaxFiles int `json:"maxFiles"`
	// MaxAge is the number of days to retain rotated files.
	MaxAge    int    `json:"maxAge"`
	Directory string `json:"directory"`
	Compress  bool   `json:"compress"`
}

// Config defines the configuration of a logger
type Config struct {
	RotatingWriterConfig
	DisableWriterDisplaying bool   `json:"disableWriterDisplaying"`
	DisableFileLogging      bool   `json:"disableFileLogging"`
	LogLevel                Level  `json:"logLevel"`
	DisplayLevel            Level  `json:"displayLevel"`
	LogFormat               Format `json:"logFormat"`
	MsgPrefix               string `json:"-"`
	LoggerName              string `json:"-"`
}
