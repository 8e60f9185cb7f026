package engine

import (
	"testing"
	"time"

	"orb-trader/internal/config"
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

func testLevel() models.BreakoutLevel {
	return models.BreakoutLevel{
		Symbol: "nifty",
		Upper:  107,
		Lower:  98,
		Buffer: 2,
		Candle: candleFor(100, 5),
	}
}

func noFilters() *FilterEngine {
	return NewFilterEngine(config.FilterConfig{})
}

func TestEvaluateBreakoutDirections(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  Signal
	}{
		{"inside range", 103, SignalNone},
		{"at upper", 107, SignalNone},
		{"above upper", 107.5, SignalCall},
		{"at lower", 98, SignalNone},
		{"below lower", 97.5, SignalPut},
	}
	level := testLevel()
	e := noFilters()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(level, FilterContext{Tick: models.Tick{Symbol: "nifty", Price: tt.price}})
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%.1f) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestEvaluateAmbiguousBreakoutSuppressed(t *testing.T) {
	// A degenerate level where one price clears both thresholds.
	level := models.BreakoutLevel{Symbol: "nifty", Upper: 100, Lower: 110}
	got, err := noFilters().Evaluate(level, FilterContext{Tick: models.Tick{Price: 105}})
	if !apperrors.Is(err, apperrors.ErrAmbiguousSignal) {
		t.Fatalf("err = %v, want ErrAmbiguousSignal", err)
	}
	if got != SignalNone {
		t.Errorf("ambiguous evaluation returned %v, want SignalNone", got)
	}
}

func recentTicks(count int, price float64, vol int64) []models.Tick {
	base := time.Date(2025, 6, 2, 9, 21, 0, 0, time.UTC)
	ticks := make([]models.Tick, count)
	for i := range ticks {
		ticks[i] = models.Tick{Symbol: "nifty", Price: price, Volume: vol, Timestamp: base.Add(time.Duration(i) * time.Second)}
	}
	return ticks
}

func TestVolumeFilter(t *testing.T) {
	f := NewVolumeFilter(true, 1.5, 4)

	recent := recentTicks(4, 107.5, 100)
	if f.Confirm(FilterContext{Tick: models.Tick{Price: 108, Volume: 149}, Recent: recent}, SignalCall) {
		t.Error("volume 149 confirmed against avg 100 with threshold 1.5")
	}
	if !f.Confirm(FilterContext{Tick: models.Tick{Price: 108, Volume: 150}, Recent: recent}, SignalCall) {
		t.Error("volume 150 not confirmed against avg 100 with threshold 1.5")
	}
}

func TestVolumeFilterSkipsWithShortHistory(t *testing.T) {
	f := NewVolumeFilter(true, 1.5, 10)
	recent := recentTicks(3, 107.5, 1000)
	if !f.Confirm(FilterContext{Tick: models.Tick{Price: 108, Volume: 1}, Recent: recent}, SignalCall) {
		t.Error("volume filter rejected despite insufficient history")
	}
}

func TestMomentumFilter(t *testing.T) {
	f := NewMomentumFilter(true, 3, 0.05)
	base := time.Date(2025, 6, 2, 9, 21, 0, 0, time.UTC)
	rising := []models.Tick{
		{Price: 107.1, Timestamp: base},
		{Price: 107.3, Timestamp: base.Add(time.Second)},
		{Price: 107.6, Timestamp: base.Add(2 * time.Second)},
	}
	if !f.Confirm(FilterContext{Tick: models.Tick{Price: 108}, Recent: rising}, SignalCall) {
		t.Error("monotone rise not confirmed for a call")
	}
	if f.Confirm(FilterContext{Tick: models.Tick{Price: 96}, Recent: rising}, SignalPut) {
		t.Error("rising sequence confirmed for a put")
	}

	dip := []models.Tick{
		{Price: 107.1, Timestamp: base},
		{Price: 108.0, Timestamp: base.Add(time.Second)},
		{Price: 107.4, Timestamp: base.Add(2 * time.Second)},
	}
	if f.Confirm(FilterContext{Tick: models.Tick{Price: 108}, Recent: dip}, SignalCall) {
		t.Error("0.6 point reversal confirmed despite 0.05 tolerance")
	}
}

func TestDisabledFiltersAreVacuous(t *testing.T) {
	e := NewFilterEngine(config.FilterConfig{
		VolumeConfirmation:   false,
		MomentumConfirmation: false,
		VolumeThreshold:      100,
		MomentumTolerance:    0,
	})
	got, err := e.Evaluate(testLevel(), FilterContext{Tick: models.Tick{Price: 110, Volume: 1}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != SignalCall {
		t.Errorf("disabled filters blocked the breakout, got %v", got)
	}
}
