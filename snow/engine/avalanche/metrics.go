// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanche-consensus/utils/metric"
	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

const namespace = "engine"

type metrics struct {
	numRounds            prometheus.Counter
	numAbandonedRounds   prometheus.Counter
	numInsufficientPeers prometheus.Counter
	numFailedQueries     prometheus.Counter
	numSubmitted         prometheus.Counter
	roundDuration        metric.Averager
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	errs := wrappers.Errs{}
	m := &metrics{
		numRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds",
			Help:      "Number of rounds whose results were applied",
		}),
		numAbandonedRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abandoned_rounds",
			Help:      "Number of rounds discarded before their results were applied",
		}),
		numInsufficientPeers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_peers",
			Help:      "Number of rounds that sampled fewer than k peers",
		}),
		numFailedQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_queries",
			Help:      "Number of queries that timed out or failed",
		}),
		numSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submitted",
			Help:      "Number of items added to consensus",
		}),
		roundDuration: metric.NewAveragerWithErrs(
			namespace,
			"round_duration",
			"time (in ns) spent gathering the responses of a round",
			reg,
			&errs,
		),
	}

	errs.Add(
		reg.Register(m.numRounds),
		reg.Register(m.numAbandonedRounds),
		reg.Register(m.numInsufficientPeers),
		reg.Register(m.numFailedQueries),
		reg.Register(m.numSubmitted),
	)
	return m, errs.Err
}
