package engine

import (
	"testing"
	"time"
)

func TestCandleAggregatorEmitsOnBucketRollover(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)
	a := newCandleAggregator("nifty", 5*time.Minute, start)

	if _, ok := a.Observe(tickAt("nifty", 108, 100, start.Add(time.Minute))); ok {
		t.Fatal("candle emitted from the first bucket")
	}
	a.Observe(tickAt("nifty", 112, 50, start.Add(2*time.Minute)))
	a.Observe(tickAt("nifty", 107, 80, start.Add(4*time.Minute)))

	c, ok := a.Observe(tickAt("nifty", 110, 60, start.Add(5*time.Minute)))
	if !ok {
		t.Fatal("no candle emitted on bucket rollover")
	}
	if c.Open != 108 || c.High != 112 || c.Low != 107 || c.Close != 107 {
		t.Errorf("candle OHLC = %.0f/%.0f/%.0f/%.0f, want 108/112/107/107", c.Open, c.High, c.Low, c.Close)
	}
	if c.Volume != 230 {
		t.Errorf("candle volume = %d, want 230", c.Volume)
	}
	if !c.Start.Equal(start) || !c.End.Equal(start.Add(5*time.Minute)) {
		t.Errorf("candle window = [%v, %v]", c.Start, c.End)
	}
}

func TestCandleAggregatorSkipsEmptyBuckets(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)
	a := newCandleAggregator("nifty", 5*time.Minute, start)

	a.Observe(tickAt("nifty", 108, 100, start))
	// Next tick lands three buckets later.
	c, ok := a.Observe(tickAt("nifty", 111, 40, start.Add(17*time.Minute)))
	if !ok {
		t.Fatal("no candle emitted across the gap")
	}
	if !c.Start.Equal(start) {
		t.Errorf("emitted candle start = %v, want %v", c.Start, start)
	}

	// The new bucket must contain the late tick's window.
	c2, ok := a.Observe(tickAt("nifty", 112, 40, start.Add(20*time.Minute)))
	if !ok {
		t.Fatal("no candle for the post-gap bucket")
	}
	if !c2.Start.Equal(start.Add(15 * time.Minute)) {
		t.Errorf("post-gap candle start = %v, want %v", c2.Start, start.Add(15*time.Minute))
	}
}

// A candle opened after a quiet gap belongs to the bucket its first tick
// falls in, not the stale one left behind by the gap.
func TestCandleAggregatorAlignsBucketAfterQuietStart(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)
	a := newCandleAggregator("nifty", 5*time.Minute, start)

	// First ticks arrive two buckets past the start. Both sit in
	// [start+10m, start+15m): no candle may be emitted between them.
	a.Observe(tickAt("nifty", 108, 100, start.Add(12*time.Minute)))
	if _, ok := a.Observe(tickAt("nifty", 110, 50, start.Add(14*time.Minute))); ok {
		t.Fatal("candle emitted between two ticks of the same bucket")
	}

	c, ok := a.Observe(tickAt("nifty", 111, 40, start.Add(16*time.Minute)))
	if !ok {
		t.Fatal("no candle emitted on bucket rollover")
	}
	if !c.Start.Equal(start.Add(10*time.Minute)) || !c.End.Equal(start.Add(15*time.Minute)) {
		t.Errorf("candle window = [%v, %v], want [%v, %v]", c.Start, c.End, start.Add(10*time.Minute), start.Add(15*time.Minute))
	}
	if c.Open != 108 || c.Close != 110 {
		t.Errorf("candle open/close = %.0f/%.0f, want 108/110", c.Open, c.Close)
	}
}
