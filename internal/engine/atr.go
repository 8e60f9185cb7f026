package engine

import (
	"math"

	"orb-trader/internal/models"
)

// ATREstimator maintains a fixed-size ring of true-range samples per
// instrument and exposes the rolling average. It never fails: until the
// window is full it reports a configured fallback value.
type ATREstimator struct {
	period   int
	fallback float64

	window []float64
	next   int
	count  int

	prevClose float64
	hasPrev   bool
}

// NewATREstimator creates an estimator with the given period and fallback.
func NewATREstimator(period int, fallback float64) *ATREstimator {
	if period <= 0 {
		period = 14
	}
	return &ATREstimator{
		period:   period,
		fallback: fallback,
		window:   make([]float64, period),
	}
}

// AddCandle appends the true range of a new candle, evicting the oldest
// sample once the ring is full. The first candle's true range is high-low.
func (a *ATREstimator) AddCandle(c models.Candle) {
	tr := c.High - c.Low
	if a.hasPrev {
		tr = math.Max(tr, math.Max(
			math.Abs(c.High-a.prevClose),
			math.Abs(c.Low-a.prevClose),
		))
	}
	a.window[a.next] = tr
	a.next = (a.next + 1) % a.period
	if a.count < a.period {
		a.count++
	}
	a.prevClose = c.Close
	a.hasPrev = true
}

// CurrentATR returns the average true range over the window, or the
// fallback value until the window holds a full period of samples.
func (a *ATREstimator) CurrentATR() float64 {
	if a.count < a.period {
		return a.fallback
	}
	var sum float64
	for _, tr := range a.window {
		sum += tr
	}
	return sum / float64(a.period)
}

// Samples returns the number of true-range samples accumulated so far.
func (a *ATREstimator) Samples() int {
	return a.count
}
