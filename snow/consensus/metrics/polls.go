// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeLabel      = "outcome"
	successfulOutcome = "successful"
	failedOutcome     = "failed"
)

var _ Polls = (*polls)(nil)

// Polls counts the outcome of every conflict set poll.
type Polls interface {
	// Successful marks a poll in which a choice reached alpha.
	Successful()
	// Failed marks an inconclusive poll.
	Failed()
}

type polls struct {
	successful prometheus.Counter
	failed     prometheus.Counter
}

func NewPolls(namespace string, reg prometheus.Registerer) (Polls, error) {
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls",
			Help:      "Number of conflict set polls by outcome",
		},
		[]string{outcomeLabel},
	)
	return &polls{
		successful: outcomes.WithLabelValues(successfulOutcome),
		failed:     outcomes.WithLabelValues(failedOutcome),
	}, reg.Register(outcomes)
}

func (p *polls) Successful() {
	p.successful.Inc()
}

func (p *polls) Failed() {
	p.failed.Inc()
}
