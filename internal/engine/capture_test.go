package engine

import (
	"testing"
	"time"

	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

func tickAt(sym string, price float64, vol int64, ts time.Time) models.Tick {
	return models.Tick{Symbol: sym, Price: price, Volume: vol, Timestamp: ts}
}

func TestRangeCaptureBuildsCandle(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	c := NewRangeCapture("nifty", start, end)

	c.Observe(tickAt("nifty", 102, 100, start))
	c.Observe(tickAt("nifty", 105, 150, start.Add(time.Minute)))
	c.Observe(tickAt("nifty", 100, 120, start.Add(2*time.Minute)))
	c.Observe(tickAt("nifty", 103, 80, start.Add(4*time.Minute)))

	candle, err := c.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if candle.Open != 102 || candle.High != 105 || candle.Low != 100 || candle.Close != 103 {
		t.Errorf("OHLC = %.1f/%.1f/%.1f/%.1f, want 102/105/100/103",
			candle.Open, candle.High, candle.Low, candle.Close)
	}
	if candle.Volume != 450 {
		t.Errorf("Volume = %d, want 450", candle.Volume)
	}
	if !candle.Start.Equal(start) || !candle.End.Equal(end) {
		t.Errorf("window = [%v, %v], want [%v, %v]", candle.Start, candle.End, start, end)
	}
}

func TestRangeCaptureFirstTickSetsAllPrices(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	c := NewRangeCapture("nifty", start, start.Add(5*time.Minute))
	c.Observe(tickAt("nifty", 99.5, 10, start))

	candle, err := c.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if candle.Open != 99.5 || candle.High != 99.5 || candle.Low != 99.5 || candle.Close != 99.5 {
		t.Errorf("single-tick candle OHLC = %.2f/%.2f/%.2f/%.2f, want all 99.50",
			candle.Open, candle.High, candle.Low, candle.Close)
	}
}

func TestRangeCaptureEmptyWindow(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	c := NewRangeCapture("nifty", start, start.Add(5*time.Minute))

	_, err := c.Freeze()
	if !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("Freeze on empty window = %v, want ErrInsufficientData", err)
	}
	if c.Frozen() {
		t.Error("capture should not be frozen after a failed freeze")
	}
}

func TestRangeCaptureIgnoresTicksAfterFreeze(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	c := NewRangeCapture("nifty", start, start.Add(5*time.Minute))
	c.Observe(tickAt("nifty", 100, 10, start))

	first, err := c.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	c.Observe(tickAt("nifty", 500, 10, start.Add(6*time.Minute)))
	second, err := c.Freeze()
	if err != nil {
		t.Fatalf("second Freeze: %v", err)
	}
	if second != first {
		t.Errorf("candle changed after freeze: %+v vs %+v", second, first)
	}
}

func TestRangeCaptureCandleBeforeFreeze(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	c := NewRangeCapture("nifty", start, start.Add(5*time.Minute))
	c.Observe(tickAt("nifty", 100, 10, start))

	_, err := c.Candle()
	var pre *apperrors.PreconditionError
	if !apperrors.As(err, &pre) {
		t.Fatalf("Candle before Freeze = %v, want PreconditionError", err)
	}
}
