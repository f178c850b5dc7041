// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanche-consensus/ids"
	"github.com/ava-labs/avalanche-consensus/snow/choices"
	"github.com/ava-labs/avalanche-consensus/utils/linked"
	"github.com/ava-labs/avalanche-consensus/utils/logging"
	"github.com/ava-labs/avalanche-consensus/utils/metric"
	"github.com/ava-labs/avalanche-consensus/utils/timer/mockable"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

var _ Latency = (*latency)(nil)

type Latency interface {
	// Issued marks the item as having been issued.
	Issued(id ids.ID, pollNumber uint64)

	// Accepted marks the item as having been accepted.
	Accepted(id ids.ID, pollNumber uint64, containerSize int)

	// Rejected marks the item as having been rejected.
	Rejected(id ids.ID, pollNumber uint64, containerSize int)

	// MeasureAndGetOldestDuration returns the amount of time the oldest item
	// has been processing.
	MeasureAndGetOldestDuration() time.Duration

	// NumProcessing returns the number of currently processing items.
	NumProcessing() int
}

type opStart struct {
	time       time.Time
	pollNumber uint64
}

// Latency reports commonly used consensus latency metrics.
type latency struct {
	// ProcessingEntries keeps track of the [opStart] that each item was issued
	// into the consensus instance. This is used to calculate the amount of
	// time to accept or reject the item.
	processingEntries *linked.Hashmap[ids.ID, opStart]

	// log reports anomalous events.
	log logging.Logger

	clock *mockable.Clock

	// numProcessing keeps track of the number of items processing
	numProcessing prometheus.Gauge

	// pollsAccepted tracks the number of polls that an item was in processing
	// for before being accepted
	pollsAccepted metric.Averager

	// latAccepted tracks the number of nanoseconds that an item was processing
	// before being accepted
	latAccepted         metric.Averager
	containerSizeAccSum prometheus.Gauge

	// pollsRejected tracks the number of polls that an item was in processing
	// for before being rejected
	pollsRejected metric.Averager

	// latRejected tracks the number of nanoseconds that an item was processing
	// before being rejected
	latRejected         metric.Averager
	containerSizeRejSum prometheus.Gauge
}

// Initialize the metrics with the provided names.
func NewLatency(metricName, descriptionName string, log logging.Logger, clock *mockable.Clock, namespace string, reg prometheus.Registerer) (Latency, error) {
	errs := wrappers.Errs{}
	l := &latency{
		processingEntries: linked.NewHashmap[ids.ID, opStart](),
		log:               log,
		clock:             clock,
		numProcessing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      fmt.Sprintf("%s_processing", metricName),
			Help:      fmt.Sprintf("Number of currently processing %s", metricName),
		}),
		pollsAccepted: metric.NewAveragerWithErrs(
			namespace,
			fmt.Sprintf("%s_polls_accepted", metricName),
			fmt.Sprintf("number of polls from issuance of a %s to its acceptance", descriptionName),
			reg,
			&errs,
		),
		latAccepted: metric.NewAveragerWithErrs(
			namespace,
			fmt.Sprintf("%s_accepted", metricName),
			fmt.Sprintf("time (in ns) from issuance of a %s to its acceptance", descriptionName),
			reg,
			&errs,
		),
		containerSizeAccSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      fmt.Sprintf("%s_accepted_container_size_sum", metricName),
			Help:      fmt.Sprintf("Cumulative sum of container size of all accepted %ss", metricName),
		}),
		pollsRejected: metric.NewAveragerWithErrs(
			namespace,
			fmt.Sprintf("%s_polls_rejected", metricName),
			fmt.Sprintf("number of polls from issuance of a %s to its rejection", descriptionName),
			reg,
			&errs,
		),
		latRejected: metric.NewAveragerWithErrs(
			namespace,
			fmt.Sprintf("%s_rejected", metricName),
			fmt.Sprintf("time (in ns) from issuance of a %s to its rejection", descriptionName),
			reg,
			&errs,
		),
		containerSizeRejSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      fmt.Sprintf("%s_rejected_container_size_sum", metricName),
			Help:      fmt.Sprintf("Cumulative sum of container size of all rejected %ss", metricName),
		}),
	}
	errs.Add(
		reg.Register(l.numProcessing),
		reg.Register(l.containerSizeAccSum),
		reg.Register(l.containerSizeRejSum),
	)
	return l, errs.Err
}

func (l *latency) Issued(id ids.ID, pollNumber uint64) {
	l.processingEntries.Put(id, opStart{
		time:       l.clock.Time(),
		pollNumber: pollNumber,
	})
	l.numProcessing.Inc()
}

func (l *latency) Accepted(id ids.ID, pollNumber uint64, containerSize int) {
	start, ok := l.processingEntries.Get(id)
	if !ok {
		l.log.Debug("unable to measure item latency",
			zap.Stringer("status", choices.Accepted),
			zap.Stringer("itemID", id),
		)
		return
	}
	l.processingEntries.Delete(id)

	l.pollsAccepted.Observe(float64(pollNumber - start.pollNumber))

	duration := l.clock.Since(start.time)
	l.latAccepted.Observe(float64(duration))
	l.numProcessing.Dec()

	l.containerSizeAccSum.Add(float64(containerSize))
}

func (l *latency) Rejected(id ids.ID, pollNumber uint64, containerSize int) {
	start, ok := l.processingEntries.Get(id)
	if !ok {
		l.log.Debug("unable to measure item latency",
			zap.Stringer("status", choices.Rejected),
			zap.Stringer("itemID", id),
		)
		return
	}
	l.processingEntries.Delete(id)

	l.pollsRejected.Observe(float64(pollNumber - start.pollNumber))

	duration := l.clock.Since(start.time)
	l.latRejected.Observe(float64(duration))
	l.numProcessing.Dec()

	l.containerSizeRejSum.Add(float64(containerSize))
}

func (l *latency) MeasureAndGetOldestDuration() time.Duration {
	_, oldestOp, exists := l.processingEntries.Oldest()
	if !exists {
		return 0
	}
	return l.clock.Since(oldestOp.time)
}

func (l *latency) NumProcessing() int {
	return l.processingEntries.Len()
}
