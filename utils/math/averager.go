// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math"
	"sync"
	"time"
)

var (
	_ Averager = (*continuousAverager)(nil)
	_ Averager = (*syncAverager)(nil)
)

// Averager tracks a continuous time exponential moving average of the provided
// values.
type Averager interface {
	// Observe the value at the given time
	Observe(value float64, currentTime time.Time)

	// Read returns the average of the provided values.
	Read() float64
}

type continuousAverager struct {
	halflife    float64
	weightedSum float64
	normalizer  float64
	lastUpdated time.Time
}

// NewAverager returns an averager that starts at [initialPrediction] and
// halves the weight of old observations every [halflife].
func NewAverager(
	initialPrediction float64,
	halflife time.Duration,
	currentTime time.Time,
) Averager {
	return &continuousAverager{
		halflife:    float64(halflife),
		weightedSum: initialPrediction,
		normalizer:  1,
		lastUpdated: currentTime,
	}
}

func (a *continuousAverager) Observe(value float64, currentTime time.Time) {
	previousTime := a.lastUpdated
	if a.lastUpdated.Before(currentTime) {
		a.lastUpdated = currentTime
	}

	// newDelta <= 0 when observations arrive out of order
	newDelta := float64(currentTime.Sub(a.lastUpdated))
	oldDelta := float64(previousTime.Sub(a.lastUpdated))

	newWeight := math.Pow(2, newDelta/a.halflife)
	oldWeight := math.Pow(2, oldDelta/a.halflife)

	a.weightedSum = newWeight*value + oldWeight*a.weightedSum
	a.normalizer = newWeight + oldWeight*a.normalizer
}

func (a *continuousAverager) Read() float64 {
	return a.weightedSum / a.normalizer
}

type syncAverager struct {
	lock     sync.RWMutex
	averager Averager
}

// NewSyncAverager makes [averager] safe for concurrent use.
func NewSyncAverager(averager Averager) Averager {
	return &syncAverager{
		averager: averager,
	}
}

func (a *syncAverager) Observe(value float64, currentTime time.Time) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.averager.Observe(value, currentTime)
}

func (a *syncAverager) Read() float64 {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.averager.Read()
}
