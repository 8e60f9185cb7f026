package engine

import (
	"math"

	"orb-trader/internal/config"
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// Signal is the tri-state outcome of entry evaluation.
type Signal int

const (
	SignalNone Signal = iota
	SignalCall
	SignalPut
)

func (s Signal) String() string {
	switch s {
	case SignalCall:
		return "CALL"
	case SignalPut:
		return "PUT"
	default:
		return "NONE"
	}
}

// Side maps a signal to the option side it would trade.
func (s Signal) Side() models.OptionSide {
	if s == SignalPut {
		return models.SidePut
	}
	return models.SideCall
}

// FilterContext carries the data confirmation filters evaluate against: the
// triggering tick and a short trailing window of recent ticks (oldest first,
// excluding the triggering tick).
type FilterContext struct {
	Tick   models.Tick
	Recent []models.Tick
}

// Filter is one entry-confirmation predicate. Disabled filters are
// vacuously true.
type Filter interface {
	Name() string
	Enabled() bool
	Confirm(ctx FilterContext, s Signal) bool
}

// VolumeFilter confirms entries when the triggering tick's volume is at
// least threshold times the trailing average volume. With too little
// history the check is skipped.
type VolumeFilter struct {
	enabled   bool
	threshold float64
	periods   int
}

// NewVolumeFilter creates a volume-confirmation filter.
func NewVolumeFilter(enabled bool, threshold float64, periods int) *VolumeFilter {
	if threshold <= 0 {
		threshold = 1.2
	}
	if periods <= 0 {
		periods = 10
	}
	return &VolumeFilter{enabled: enabled, threshold: threshold, periods: periods}
}

func (f *VolumeFilter) Name() string  { return "volume" }
func (f *VolumeFilter) Enabled() bool { return f.enabled }

func (f *VolumeFilter) Confirm(ctx FilterContext, _ Signal) bool {
	recent := ctx.Recent
	if len(recent) < f.periods {
		return true
	}
	recent = recent[len(recent)-f.periods:]
	var sum int64
	for _, t := range recent {
		sum += t.Volume
	}
	avg := float64(sum) / float64(len(recent))
	if avg == 0 {
		return true
	}
	return float64(ctx.Tick.Volume) >= avg*f.threshold
}

// MomentumFilter confirms entries when the last N price moves are
// directionally consistent with the breakout: no reversal larger than the
// tolerance in the opposite direction.
type MomentumFilter struct {
	enabled   bool
	periods   int
	tolerance float64
}

// NewMomentumFilter creates a momentum-confirmation filter.
func NewMomentumFilter(enabled bool, periods int, tolerance float64) *MomentumFilter {
	if periods <= 0 {
		periods = 3
	}
	return &MomentumFilter{enabled: enabled, periods: periods, tolerance: tolerance}
}

func (f *MomentumFilter) Name() string  { return "momentum" }
func (f *MomentumFilter) Enabled() bool { return f.enabled }

func (f *MomentumFilter) Confirm(ctx FilterContext, s Signal) bool {
	prices := make([]float64, 0, f.periods+1)
	recent := ctx.Recent
	if len(recent) > f.periods {
		recent = recent[len(recent)-f.periods:]
	}
	for _, t := range recent {
		prices = append(prices, t.Price)
	}
	prices = append(prices, ctx.Tick.Price)
	if len(prices) < 2 {
		return true
	}
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if s == SignalPut {
			delta = -delta
		}
		if delta < -math.Abs(f.tolerance) {
			return false
		}
	}
	return true
}

// FilterEngine evaluates the breakout thresholds and all configured
// confirmation filters against a tick. It holds no per-instrument state.
type FilterEngine struct {
	filters []Filter
}

// NewFilterEngine builds the filter set from configuration.
func NewFilterEngine(cfg config.FilterConfig) *FilterEngine {
	return &FilterEngine{
		filters: []Filter{
			NewVolumeFilter(cfg.VolumeConfirmation, cfg.VolumeThreshold, cfg.VolumePeriods),
			NewMomentumFilter(cfg.MomentumConfirmation, cfg.MomentumPeriods, cfg.MomentumTolerance),
		},
	}
}

// Evaluate returns the entry signal for the tick, or SignalNone. When both
// thresholds are breached simultaneously the signal is suppressed and
// ErrAmbiguousSignal is returned so the caller can log the condition; this
// is a control outcome, not a failure.
func (e *FilterEngine) Evaluate(level models.BreakoutLevel, ctx FilterContext) (Signal, error) {
	callBreach := ctx.Tick.Price > level.Upper
	putBreach := ctx.Tick.Price < level.Lower

	switch {
	case callBreach && putBreach:
		return SignalNone, apperrors.ErrAmbiguousSignal
	case !callBreach && !putBreach:
		return SignalNone, nil
	}

	signal := SignalCall
	if putBreach {
		signal = SignalPut
	}

	for _, f := range e.filters {
		if !f.Enabled() {
			continue
		}
		if !f.Confirm(ctx, signal) {
			return SignalNone, nil
		}
	}
	return signal, nil
}
