package engine

import (
	"time"

	"orb-trader/internal/models"
)

// candleAggregator buckets post-capture ticks into fixed-duration candles
// that feed the volatility estimator. A candle is emitted when the first
// tick of the following bucket arrives.
type candleAggregator struct {
	symbol   string
	interval time.Duration

	bucketStart time.Time
	open        float64
	high        float64
	low         float64
	close       float64
	volume      int64
	ticks       int
}

func newCandleAggregator(symbol string, interval time.Duration, start time.Time) *candleAggregator {
	return &candleAggregator{
		symbol:      symbol,
		interval:    interval,
		bucketStart: start,
	}
}

// Observe folds a tick into the current bucket. When the tick belongs to a
// later bucket, the completed candle is returned and a new bucket begins.
func (a *candleAggregator) Observe(t models.Tick) (models.Candle, bool) {
	var done models.Candle
	emitted := false

	if a.ticks > 0 && !t.Timestamp.Before(a.bucketStart.Add(a.interval)) {
		done = a.finalize()
		emitted = true
	}
	// Align the bucket with the tick, skipping empty intervals, so a candle
	// never spans a quiet gap.
	if a.ticks == 0 {
		for !t.Timestamp.Before(a.bucketStart.Add(a.interval)) {
			a.bucketStart = a.bucketStart.Add(a.interval)
		}
	}

	if a.ticks == 0 {
		a.open = t.Price
		a.high = t.Price
		a.low = t.Price
	} else {
		if t.Price > a.high {
			a.high = t.Price
		}
		if t.Price < a.low {
			a.low = t.Price
		}
	}
	a.close = t.Price
	a.volume += t.Volume
	a.ticks++

	return done, emitted
}

func (a *candleAggregator) finalize() models.Candle {
	c := models.Candle{
		Symbol: a.symbol,
		Start:  a.bucketStart,
		End:    a.bucketStart.Add(a.interval),
		Open:   a.open,
		High:   a.high,
		Low:    a.low,
		Close:  a.close,
		Volume: a.volume,
	}
	a.ticks = 0
	a.volume = 0
	return c
}
