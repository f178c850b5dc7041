// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanche-consensus/snow"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/snowball"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common/tracker"
	"github.com/ava-labs/avalanche-consensus/snow/validators"
)

const (
	DefaultRoundTimeout = 2 * time.Second
	DefaultRetryDelay   = 100 * time.Millisecond
)

var (
	errMissingContext    = errors.New("missing consensus context")
	errMissingValidators = errors.New("missing validator set")
	errMissingSender     = errors.New("missing sender")
	errInvalidTimeout    = errors.New("round timeout must be positive")
	errInvalidRetryDelay = errors.New("retry delay must be positive")
	errInvalidRateLimit  = errors.New("query rate limit must not be negative")
	ErrUnknownPolicy     = errors.New("unknown insufficient peers policy")
)

// InsufficientPeersPolicy is what a round does when fewer than K peers can be
// sampled.
type InsufficientPeersPolicy byte

const (
	// Degrade samples every available peer.
	Degrade InsufficientPeersPolicy = iota
	// Stall skips the round and retries after the retry delay.
	Stall
)

func (p InsufficientPeersPolicy) String() string {
	switch p {
	case Degrade:
		return "degrade"
	case Stall:
		return "stall"
	default:
		return "unknown"
	}
}

func ParseInsufficientPeersPolicy(s string) (InsufficientPeersPolicy, error) {
	switch strings.ToLower(s) {
	case "degrade":
		return Degrade, nil
	case "stall":
		return Stall, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Config wraps all the parameters needed for an avalanche engine
type Config struct {
	Ctx        *snow.ConsensusContext
	Params     snowball.Parameters
	Validators validators.Set
	// Peers is optional. When provided, the connected stake is reported by
	// the health check.
	Peers  tracker.Peers
	Sender common.Sender

	// RoundTimeout bounds how long a round waits for query responses.
	RoundTimeout time.Duration
	// RetryDelay is how long Run waits before retrying a round that could not
	// be issued.
	RetryDelay              time.Duration
	InsufficientPeersPolicy InsufficientPeersPolicy

	// QueryRateLimit is the maximum number of outbound queries per second. 0
	// disables the limit.
	QueryRateLimit float64
	QueryBurst     int
}

func (c *Config) Verify() error {
	switch {
	case c.Ctx == nil:
		return errMissingContext
	case c.Validators == nil:
		return errMissingValidators
	case c.Sender == nil:
		return errMissingSender
	case c.RoundTimeout <= 0:
		return errInvalidTimeout
	case c.RetryDelay <= 0:
		return errInvalidRetryDelay
	case c.QueryRateLimit < 0:
		return errInvalidRateLimit
	case c.InsufficientPeersPolicy != Degrade && c.InsufficientPeersPolicy != Stall:
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, c.InsufficientPeersPolicy)
	default:
		return c.Params.Verify()
	}
}
