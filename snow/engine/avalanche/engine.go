// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/snow/consensus/avalanche"
	"github.com/ava-labs/avalanche-consensus/snow/engine/avalanche/poll"
	"github.com/ava-labs/avalanche-consensus/snow/engine/common"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/math"
	"github.com/ava-labs/avalanche-consensus/utils/timer/mockable"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

const (
	// maxQueryItems is the largest number of items a peer may ask about in
	// one query.
	maxQueryItems = 1024

	roundLatencyHalflife = time.Minute
)

var (
	_ common.QueryHandler = (*Engine)(nil)

	ErrEngineStopped = errors.New("engine stopped")

	errTooManyItems = errors.New("too many items queried")
	errUnhealthy    = errors.New("avalanche engine is not healthy")
)

// Engine drives rounds of repeated sampling over the processing frontier of a
// DAG until every submitted item is decided.
//
// Consensus state is only mutated while holding Ctx.Lock, so submissions,
// poll results and cascades are applied one at a time. The queries of a round
// are sent without holding the lock.
type Engine struct {
	Config

	consensus *avalanche.Topological
	polls     poll.Set
	limiter   *rate.Limiter
	metrics   *metrics
	clock     mockable.Clock

	// roundLatency is a moving average of the time from issuing a round to
	// applying it
	roundLatency math.Averager

	// requestID of the most recently issued round
	requestID uint32
	// errs tracks if an invariant was violated while applying a round
	errs wrappers.Errs

	// wake is signaled when new work may be available
	wake chan struct{}

	stopOnce  sync.Once
	stopped   chan struct{}
	isStopped bool
}

type round struct {
	requestID uint32
	itemIDs   []ids.ID
	vdrs      []ids.NodeID
	start     time.Time
}

type response struct {
	nodeID ids.NodeID
	votes  []ids.ID
	err    error
}

func New(config Config) (*Engine, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}

	consensus, err := avalanche.NewTopological(config.Ctx, config.Params)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Config:    config,
		consensus: consensus,
		wake:      make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}

	e.roundLatency = math.NewAverager(0, roundLatencyHalflife, e.clock.Time())
	e.polls, err = poll.NewSet(
		poll.NewEarlyTermFactory(config.Params.Alpha),
		config.Ctx.Log,
		&e.clock,
		namespace,
		config.Ctx.Registerer,
	)
	if err != nil {
		return nil, err
	}

	e.metrics, err = newMetrics(config.Ctx.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine metrics: %w", err)
	}

	limit := rate.Inf
	if config.QueryRateLimit > 0 {
		limit = rate.Limit(config.QueryRateLimit)
	}
	e.limiter = rate.NewLimiter(limit, max(config.QueryBurst, 1))

	config.Ctx.State.Set(snow.Idle)
	return e, nil
}

// Submit adds [item] to consensus. It is decided by the following rounds.
func (e *Engine) Submit(ctx context.Context, item avalanche.Decidable) error {
	e.Ctx.Lock.Lock()
	defer e.Ctx.Lock.Unlock()

	if err := e.errs.Err; err != nil {
		return err
	}
	if e.isStopped {
		return ErrEngineStopped
	}
	if err := e.consensus.Add(ctx, item); err != nil {
		return err
	}

	e.metrics.numSubmitted.Inc()
	e.Ctx.Log.Debug("submitted item",
		zap.Stringer("kind", item.Kind()),
		zap.Stringer("itemID", item.ID()),
		zap.Stringer("status", item.Status()),
	)
	e.notify()
	return nil
}

// Round issues a single round and applies its result. Returns false if there
// was nothing to poll or not enough peers to poll.
func (e *Engine) Round(ctx context.Context) (bool, error) {
	r, err := e.issue(ctx)
	if err != nil || r == nil {
		return false, err
	}
	return true, e.complete(ctx, r)
}

// Run issues rounds until the engine is stopped, [ctx] is cancelled or an
// invariant is violated. Up to ConcurrentRepolls rounds are in flight at
// once, and their results are applied in the order they were issued.
//
// Rounds in flight when Stop is called are completed. Rounds in flight when
// [ctx] is cancelled are abandoned without applying any of their votes.
func (e *Engine) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	slots := make(chan struct{}, e.Params.ConcurrentRepolls)
	issueErr := e.issueRounds(egCtx, eg, slots)

	waitErr := eg.Wait()
	switch {
	case waitErr != nil:
		return waitErr
	case errors.Is(issueErr, ErrEngineStopped):
		return nil
	case errors.Is(issueErr, context.Canceled) || errors.Is(issueErr, context.DeadlineExceeded):
		return ctx.Err()
	default:
		return issueErr
	}
}

// Stop prevents new submissions and rounds. It is safe to call multiple
// times.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.Ctx.Lock.Lock()
		defer e.Ctx.Lock.Unlock()

		e.isStopped = true
		close(e.stopped)
		e.settle()
	})
}

// HandleQuery returns the preference of this node for each of [itemIDs].
// Unknown items are answered with the empty ID, which doesn't count as a vote
// for any item.
func (e *Engine) HandleQuery(_ context.Context, nodeID ids.NodeID, itemIDs []ids.ID) ([]ids.ID, error) {
	if len(itemIDs) > maxQueryItems {
		return nil, fmt.Errorf("%w: %d > %d", errTooManyItems, len(itemIDs), maxQueryItems)
	}

	e.Ctx.Lock.RLock()
	defer e.Ctx.Lock.RUnlock()

	preferences := make([]ids.ID, len(itemIDs))
	for i, itemID := range itemIDs {
		preference, ok := e.consensus.Preference(itemID)
		if !ok {
			e.Ctx.Log.Verbo("queried for unknown item",
				zap.Stringer("nodeID", nodeID),
				zap.Stringer("itemID", itemID),
			)
			continue
		}
		preferences[i] = preference
	}
	return preferences, nil
}

func (e *Engine) HealthCheck(context.Context) (interface{}, error) {
	e.Ctx.Lock.Lock()
	defer e.Ctx.Lock.Unlock()

	var (
		numProcessing  = e.consensus.NumProcessing()
		processingTime = e.consensus.ProcessingTime()
		details        = map[string]interface{}{
			"state":              e.Ctx.State.Get().String(),
			"numProcessing":      numProcessing,
			"longestRunningItem": processingTime.String(),
			"outstandingPolls":   e.polls.Len(),
			"roundLatency":       time.Duration(e.roundLatency.Read()).String(),
		}
		reasons []string
	)
	if numProcessing > e.Params.MaxOutstandingItems {
		reasons = append(reasons, fmt.Sprintf("number of outstanding items %d > %d", numProcessing, e.Params.MaxOutstandingItems))
	}
	if processingTime > e.Params.MaxItemProcessingTime {
		reasons = append(reasons, fmt.Sprintf("items processing time %s > %s", processingTime, e.Params.MaxItemProcessingTime))
	}
	if e.Peers != nil {
		connected := e.Peers.ConnectedPercent()
		details["percentConnected"] = connected
		if minConnected := e.Params.MinPercentConnectedHealthy(); connected < minConnected {
			reasons = append(reasons, fmt.Sprintf("connected to %f%% of the stake; should be connected to at least %f%%", connected*100, minConnected*100))
		}
	}
	if err := e.errs.Err; err != nil {
		reasons = append(reasons, err.Error())
	}

	if len(reasons) > 0 {
		return details, fmt.Errorf("%w: %s", errUnhealthy, strings.Join(reasons, ", "))
	}
	return details, nil
}

func (e *Engine) Status(itemID ids.ID) choices.Status {
	e.Ctx.Lock.RLock()
	defer e.Ctx.Lock.RUnlock()

	return e.consensus.Status(itemID)
}

func (e *Engine) NumProcessing() int {
	e.Ctx.Lock.RLock()
	defer e.Ctx.Lock.RUnlock()

	return e.consensus.NumProcessing()
}

func (e *Engine) State() snow.EngineState {
	return e.Ctx.State.Get()
}

func (e *Engine) String() string {
	e.Ctx.Lock.RLock()
	defer e.Ctx.Lock.RUnlock()

	return fmt.Sprintf("Engine(State = %s, %s, %s)", e.Ctx.State.Get(), e.consensus, e.polls)
}

func (e *Engine) issueRounds(ctx context.Context, eg *errgroup.Group, slots chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopped:
			return ErrEngineStopped
		case slots <- struct{}{}:
		}

		r, err := e.issue(ctx)
		if err != nil {
			<-slots
			return err
		}
		if r == nil {
			<-slots
			e.wait(ctx)
			continue
		}

		eg.Go(func() error {
			defer func() {
				<-slots
			}()
			return e.complete(ctx, r)
		})
	}
}

// wait blocks until new work may be available.
func (e *Engine) wait(ctx context.Context) {
	timer := time.NewTimer(e.RetryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-e.stopped:
	case <-e.wake:
	case <-timer.C:
	}
}

func (e *Engine) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// issue registers a poll for the next batch of frontier items. Returns nil if
// no round should be issued right now.
func (e *Engine) issue(ctx context.Context) (*round, error) {
	e.Ctx.Lock.Lock()
	defer e.Ctx.Lock.Unlock()

	if err := e.errs.Err; err != nil {
		return nil, err
	}
	if e.isStopped {
		return nil, ErrEngineStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	itemIDs := e.consensus.PollTargets(e.Params.BatchSize)
	if len(itemIDs) == 0 {
		return nil, nil
	}
	vdrs, ok := e.sample()
	if !ok {
		return nil, nil
	}

	e.requestID++
	if !e.polls.Add(e.requestID, itemIDs, vdrs) {
		e.Ctx.Log.Error("dropped round with a duplicate request ID",
			zap.Uint32("requestID", e.requestID),
		)
		return nil, nil
	}
	e.Ctx.State.Set(snow.RoundInFlight)

	e.Ctx.Log.Verbo("issued round",
		zap.Uint32("requestID", e.requestID),
		zap.Stringers("itemIDs", itemIDs),
		zap.Int("numPeers", len(vdrs)),
	)
	return &round{
		requestID: e.requestID,
		itemIDs:   itemIDs,
		vdrs:      vdrs,
		start:     e.clock.Time(),
	}, nil
}

// sample returns the peers to query in the next round.
func (e *Engine) sample() ([]ids.NodeID, bool) {
	size := e.Params.K
	if available := e.Validators.SampleableLen(); available < size {
		e.metrics.numInsufficientPeers.Inc()
		if e.InsufficientPeersPolicy == Stall || available == 0 {
			e.Ctx.Log.Debug("skipping round due to insufficient peers",
				zap.Int("k", size),
				zap.Int("numAvailable", available),
				zap.Stringer("policy", e.InsufficientPeersPolicy),
			)
			return nil, false
		}
		size = available
	}

	vdrs, err := e.Validators.Sample(size)
	if err != nil {
		e.Ctx.Log.Debug("failed to sample peers",
			zap.Int("size", size),
			zap.Error(err),
		)
		return nil, false
	}
	return vdrs, true
}

func (e *Engine) complete(ctx context.Context, r *round) error {
	responses := e.gather(ctx, r)
	return e.finish(ctx, r, responses)
}

// gather queries every sampled peer of [r] in parallel and waits until all of
// them answered or the round timed out.
func (e *Engine) gather(ctx context.Context, r *round) []response {
	ctx, span := e.Ctx.Tracer.Start(ctx, "avalanche.engine.round", oteltrace.WithAttributes(
		attribute.Int64("requestID", int64(r.requestID)),
		attribute.Int("numItems", len(r.itemIDs)),
		attribute.Int("numPeers", len(r.vdrs)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.RoundTimeout)
	defer cancel()

	var (
		eg        errgroup.Group
		responses = make([]response, len(r.vdrs))
	)
	for i, nodeID := range r.vdrs {
		i, nodeID := i, nodeID
		eg.Go(func() error {
			votes, err := e.query(ctx, nodeID, r)
			responses[i] = response{
				nodeID: nodeID,
				votes:  votes,
				err:    err,
			}
			return nil
		})
	}
	_ = eg.Wait()
	return responses
}

func (e *Engine) query(ctx context.Context, nodeID ids.NodeID, r *round) ([]ids.ID, error) {
	ctx, span := e.Ctx.Tracer.Start(ctx, "poll.query", oteltrace.WithAttributes(
		attribute.Stringer("nodeID", nodeID),
		attribute.Int64("requestID", int64(r.requestID)),
	))
	defer span.End()

	if err := e.limiter.Wait(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	votes, err := e.Sender.Query(ctx, nodeID, r.requestID, r.itemIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return votes, nil
}

// finish applies the responses of [r]. If [ctx] was cancelled, the round is
// abandoned and none of its votes are applied.
func (e *Engine) finish(ctx context.Context, r *round, responses []response) error {
	e.Ctx.Lock.Lock()
	defer e.Ctx.Lock.Unlock()

	now := e.clock.Time()
	latency := float64(now.Sub(r.start))
	e.metrics.roundDuration.Observe(latency)
	e.roundLatency.Observe(latency, now)
	defer e.notify()

	if ctx.Err() != nil {
		// Dropping every peer removes the poll from the set. Any results
		// released by the removal are discarded with it.
		for _, nodeID := range r.vdrs {
			_ = e.polls.Drop(r.requestID, nodeID)
		}
		e.metrics.numAbandonedRounds.Inc()
		e.Ctx.Log.Debug("abandoned round",
			zap.Uint32("requestID", r.requestID),
			zap.Error(ctx.Err()),
		)
		e.settle()
		return nil
	}

	e.Ctx.State.Set(snow.Finalizing)

	var results []map[ids.ID]bag.Bag[ids.ID]
	for _, resp := range responses {
		if resp.err != nil {
			e.metrics.numFailedQueries.Inc()
			e.Ctx.Log.Debug("query failed",
				zap.Stringer("nodeID", resp.nodeID),
				zap.Uint32("requestID", r.requestID),
				zap.Error(resp.err),
			)
			results = append(results, e.polls.Drop(r.requestID, resp.nodeID)...)
			continue
		}
		results = append(results, e.polls.Vote(r.requestID, resp.nodeID, resp.votes)...)
	}

	for _, result := range results {
		if err := e.consensus.RecordPoll(ctx, result); err != nil {
			e.errs.Add(err)
			e.Ctx.Log.Error("failed to apply poll",
				zap.Uint32("requestID", r.requestID),
				zap.Error(err),
			)
			e.settle()
			return err
		}
		e.metrics.numRounds.Inc()
	}

	e.Ctx.Log.Verbo("finished round",
		zap.Uint32("requestID", r.requestID),
		zap.Int("numResults", len(results)),
		zap.Stringer("consensus", e.consensus),
	)
	e.settle()
	return nil
}

// settle moves the engine out of Finalizing once no result is being applied.
//
// Assumes Ctx.Lock is held.
func (e *Engine) settle() {
	switch {
	case e.polls.Len() > 0:
		e.Ctx.State.Set(snow.RoundInFlight)
	case e.isStopped:
		e.Ctx.State.Set(snow.Drained)
	default:
		e.Ctx.State.Set(snow.Idle)
	}
}
