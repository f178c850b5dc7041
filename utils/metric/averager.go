// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanche-consensus/utils/wrappers"
)

// Averager exposes a running count and sum so a dashboard can compute the
// average of the observed values.
type Averager interface {
	Observe(float64)
}

type averager struct {
	count prometheus.Counter
	sum   prometheus.Gauge
}

func NewAverager(namespace, name, desc string, reg prometheus.Registerer) (Averager, error) {
	errs := wrappers.Errs{}
	a := NewAveragerWithErrs(namespace, name, desc, reg, &errs)
	return a, errs.Err
}

func NewAveragerWithErrs(namespace, name, desc string, reg prometheus.Registerer, errs *wrappers.Errs) Averager {
	a := averager{
		count: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name + "_count",
			Help:      "Total # of observations of " + desc,
		}),
		sum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name + "_sum",
			Help:      "Sum of " + desc,
		}),
	}

	errs.Add(
		reg.Register(a.count),
		reg.Register(a.sum),
	)
	return &a
}

func (a *averager) Observe(v float64) {
	a.count.Inc()
	a.sum.Add(v)
}

// AppendNamespace joins [prefix] and [suffix] the way prometheus namespaces
// are joined.
func AppendNamespace(prefix, suffix string) string {
	switch {
	case len(prefix) == 0:
		return suffix
	case len(suffix) == 0:
		return prefix
	default:
		return fmt.Sprintf("%s_%s", prefix, suffix)
	}
}
