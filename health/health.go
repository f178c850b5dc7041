// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/timer/mockable"
)

var (
	_ Health = (*health)(nil)

	errDuplicateCheck = errors.New("duplicated check")
)

// Checker can have its health checked
type Checker interface {
	// HealthCheck returns health check results and, if not healthy, a non-nil
	// error
	//
	// It is expected that the results are json marshallable.
	HealthCheck(context.Context) (interface{}, error)
}

type CheckerFunc func(context.Context) (interface{}, error)

func (f CheckerFunc) HealthCheck(ctx context.Context) (interface{}, error) {
	return f(ctx)
}

// Result is the outcome of the latest run of a check.
type Result struct {
	// Details of the HealthCheck.
	Details interface{} `json:"message,omitempty"`

	// Error is the string representation of the error returned by the failing
	// HealthCheck. The value is nil if the check passed.
	Error *string `json:"error,omitempty"`

	// Timestamp of the last HealthCheck.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Duration is the amount of time this HealthCheck last took to evaluate.
	Duration time.Duration `json:"duration"`

	// ContiguousFailures the HealthCheck has returned.
	ContiguousFailures int64 `json:"contiguousFailures,omitempty"`

	// TimeOfFirstFailure of the HealthCheck,
	TimeOfFirstFailure *time.Time `json:"timeOfFirstFailure,omitempty"`
}

// Health runs registered checks on demand.
type Health interface {
	Register(name string, checker Checker) error

	// Results runs every check and returns the results along with whether
	// every check passed.
	Results(ctx context.Context) (map[string]Result, bool)
}

type health struct {
	log   logging.Logger
	clock mockable.Clock

	lock    sync.Mutex
	checks  map[string]Checker
	results map[string]Result
}

func New(log logging.Logger) Health {
	return &health{
		log:     log,
		checks:  make(map[string]Checker),
		results: make(map[string]Result),
	}
}

func (h *health) Register(name string, checker Checker) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.checks[name]; ok {
		return fmt.Errorf("%w: %q", errDuplicateCheck, name)
	}
	h.checks[name] = checker
	return nil
}

func (h *health) Results(ctx context.Context) (map[string]Result, bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	var (
		results = make(map[string]Result, len(h.checks))
		healthy = true
	)
	for name, checker := range h.checks {
		start := h.clock.Time()
		details, err := checker.HealthCheck(ctx)
		end := h.clock.Time()

		prev := h.results[name]
		result := Result{
			Details:   details,
			Timestamp: end,
			Duration:  end.Sub(start),
		}
		if err != nil {
			errString := err.Error()
			result.Error = &errString
			result.ContiguousFailures = prev.ContiguousFailures + 1
			result.TimeOfFirstFailure = prev.TimeOfFirstFailure
			if result.TimeOfFirstFailure == nil {
				result.TimeOfFirstFailure = &end
			}
			healthy = false
		}

		switch {
		case err == nil && prev.Error != nil:
			h.log.Info("check started passing",
				zap.String("name", name),
			)
		case err != nil && prev.Error == nil:
			h.log.Warn("check started failing",
				zap.String("name", name),
				zap.Error(err),
			)
		}

		h.results[name] = result
		results[name] = result
	}
	return results, healthy
}
