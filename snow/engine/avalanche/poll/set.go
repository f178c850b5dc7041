// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/utils/bag"
	"github.com/ava-labs/avalanche-consensus/utils/linked"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/metric"
	"github.com/ava-labs/avalanche-consensus/utils/timer/mockable"
)

var _ Set = (*pollSet)(nil)

type poll struct {
	Poll
	start time.Time
}

type pollSet struct {
	log      logging.Logger
	clock    *mockable.Clock
	numPolls prometheus.Gauge
	durPolls metric.Averager
	factory  Factory
	// maps requestID -> poll
	polls *linked.Hashmap[uint32, poll]
}

// NewSet returns a new empty set of polls. Finished polls are only released
// once every poll issued before them has finished.
func NewSet(
	factory Factory,
	log logging.Logger,
	clock *mockable.Clock,
	namespace string,
	reg prometheus.Registerer,
) (Set, error) {
	numPolls := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "polls",
		Help:      "Number of pending network polls",
	})
	if err := reg.Register(numPolls); err != nil {
		return nil, fmt.Errorf("failed to register polls statistics: %w", err)
	}

	durPolls, err := metric.NewAverager(
		namespace,
		"poll_duration",
		"time (in ns) this poll took to complete",
		reg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register poll_duration statistics: %w", err)
	}

	return &pollSet{
		log:      log,
		clock:    clock,
		numPolls: numPolls,
		durPolls: durPolls,
		factory:  factory,
		polls:    linked.NewHashmap[uint32, poll](),
	}, nil
}

// Add to the current set of polls
// Returns true if the poll was registered correctly and the network sample
// should be made.
func (s *pollSet) Add(requestID uint32, itemIDs []ids.ID, vdrs []ids.NodeID) bool {
	if _, exists := s.polls.Get(requestID); exists {
		s.log.Debug("dropping poll",
			zap.String("reason", "duplicated request"),
			zap.Uint32("requestID", requestID),
		)
		return false
	}

	s.log.Verbo("creating poll",
		zap.Uint32("requestID", requestID),
		zap.Int("numItems", len(itemIDs)),
		zap.Int("numValidators", len(vdrs)),
	)

	s.polls.Put(requestID, poll{
		Poll:  s.factory.New(itemIDs, vdrs),
		start: s.clock.Time(),
	})
	s.numPolls.Inc()
	return true
}

// Vote registers the connections response to a query for [id]. If there was no
// query, or the response has already be registered, nothing is performed.
func (s *pollSet) Vote(requestID uint32, vdr ids.NodeID, votes []ids.ID) []map[ids.ID]bag.Bag[ids.ID] {
	holder, exists := s.polls.Get(requestID)
	if !exists {
		s.log.Verbo("dropping vote",
			zap.String("reason", "unknown poll"),
			zap.Stringer("validator", vdr),
			zap.Uint32("requestID", requestID),
		)
		return nil
	}

	s.log.Verbo("processing votes",
		zap.Stringer("validator", vdr),
		zap.Uint32("requestID", requestID),
		zap.Stringers("votes", votes),
	)

	holder.Vote(vdr, votes)
	if !holder.Finished() {
		return nil
	}
	return s.processFinishedPolls()
}

// Drop registers that [vdr] will not respond to the poll.
func (s *pollSet) Drop(requestID uint32, vdr ids.NodeID) []map[ids.ID]bag.Bag[ids.ID] {
	holder, exists := s.polls.Get(requestID)
	if !exists {
		s.log.Verbo("dropping vote",
			zap.String("reason", "unknown poll"),
			zap.Stringer("validator", vdr),
			zap.Uint32("requestID", requestID),
		)
		return nil
	}

	s.log.Verbo("processing dropped vote",
		zap.Stringer("validator", vdr),
		zap.Uint32("requestID", requestID),
	)

	holder.Drop(vdr)
	if !holder.Finished() {
		return nil
	}
	return s.processFinishedPolls()
}

// processFinishedPolls returns the results of the finished polls at the front
// of the set, oldest first.
func (s *pollSet) processFinishedPolls() []map[ids.ID]bag.Bag[ids.ID] {
	var results []map[ids.ID]bag.Bag[ids.ID]

	// iterate from oldest to newest
	iter := s.polls.NewIterator()
	for iter.Next() {
		holder := iter.Value()
		if !holder.Finished() {
			// since we're iterating from oldest to newest, if the next poll has
			// not finished, we can break and return what we have so far
			break
		}

		s.log.Verbo("poll finished",
			zap.Uint32("requestID", iter.Key()),
			zap.Stringer("poll", holder.Poll),
		)
		s.durPolls.Observe(float64(s.clock.Time().Sub(holder.start)))
		s.numPolls.Dec()

		results = append(results, holder.Result())
		s.polls.Delete(iter.Key())
	}
	return results
}

// Len returns the number of outstanding polls
func (s *pollSet) Len() int {
	return s.polls.Len()
}

func (s *pollSet) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("current polls: (Size = %d)", s.polls.Len()))
	iter := s.polls.NewIterator()
	for iter.Next() {
		requestID := iter.Key()
		poll := iter.Value()
		sb.WriteString(fmt.Sprintf("\n    RequestID %d:\n        %s", requestID, poll.Poll))
	}
	return sb.String()
}
