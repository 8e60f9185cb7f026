package engine

import (
	"math"
	"testing"

	"orb-trader/internal/models"
)

func candleOHLC(high, low, close float64) models.Candle {
	return models.Candle{Symbol: "nifty", High: high, Low: low, Close: close}
}

func TestATRFallbackUntilWindowFull(t *testing.T) {
	a := NewATREstimator(3, 30)

	if got := a.CurrentATR(); got != 30 {
		t.Fatalf("empty estimator ATR = %.2f, want fallback 30", got)
	}

	a.AddCandle(candleOHLC(105, 100, 103))
	a.AddCandle(candleOHLC(106, 101, 104))
	if got := a.CurrentATR(); got != 30 {
		t.Errorf("ATR with 2 of 3 samples = %.2f, want fallback 30", got)
	}

	a.AddCandle(candleOHLC(107, 102, 105))
	if got := a.CurrentATR(); got == 30 {
		t.Errorf("ATR with full window still reports fallback")
	}
}

func TestATRTrueRangeUsesPreviousClose(t *testing.T) {
	a := NewATREstimator(2, 0)

	// First candle: TR = high - low = 5.
	a.AddCandle(candleOHLC(105, 100, 104))
	// Gap up: high-low = 2, |high-prevClose| = 6, |low-prevClose| = 4.
	a.AddCandle(candleOHLC(110, 108, 109))

	want := (5.0 + 6.0) / 2
	if got := a.CurrentATR(); math.Abs(got-want) > 1e-9 {
		t.Errorf("ATR = %.4f, want %.4f", got, want)
	}
}

func TestATRRollingEviction(t *testing.T) {
	a := NewATREstimator(2, 0)
	a.AddCandle(candleOHLC(110, 100, 105)) // TR 10
	a.AddCandle(candleOHLC(107, 103, 105)) // TR 4
	a.AddCandle(candleOHLC(106, 104, 105)) // TR 2, evicts the 10

	want := (4.0 + 2.0) / 2
	if got := a.CurrentATR(); math.Abs(got-want) > 1e-9 {
		t.Errorf("ATR after eviction = %.4f, want %.4f", got, want)
	}
	if a.Samples() != 2 {
		t.Errorf("Samples = %d, want 2", a.Samples())
	}
}
