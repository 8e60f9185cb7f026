package feed

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"orb-trader/internal/clock"
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// SimFeed generates a seeded geometric random walk per instrument at a
// fixed cadence. The same seed reproduces the same price path, which makes
// paper sessions repeatable.
type SimFeed struct {
	rng      *rand.Rand
	clk      clock.Clock
	interval time.Duration
	symbols  []string
	prices   map[string]float64
	volBase  int64
}

// SimFeedConfig configures the simulator.
type SimFeedConfig struct {
	Seed        int64
	Interval    time.Duration
	StartPrices map[string]float64
	Clock       clock.Clock
}

// NewSimFeed creates a simulator. Symbols are taken from the start-price
// map; every instrument needs a starting price.
func NewSimFeed(cfg SimFeedConfig) (*SimFeed, error) {
	if len(cfg.StartPrices) == 0 {
		return nil, apperrors.NewValidationError("simulation.start_prices", nil, "at least one symbol with a start price is required")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	symbols := make([]string, 0, len(cfg.StartPrices))
	prices := make(map[string]float64, len(cfg.StartPrices))
	for sym, p := range cfg.StartPrices {
		if p <= 0 {
			return nil, apperrors.NewValidationError("simulation.start_prices."+sym, p, "must be positive")
		}
		symbols = append(symbols, sym)
		prices[sym] = p
	}
	sort.Strings(symbols)

	return &SimFeed{
		rng:      rand.New(rand.NewSource(seed)),
		clk:      clk,
		interval: interval,
		symbols:  symbols,
		prices:   prices,
		volBase:  1000,
	}, nil
}

// Start emits ticks until the context is cancelled.
func (f *SimFeed) Start(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := f.clk.Now()
			for _, sym := range f.symbols {
				h(f.next(sym, now))
			}
		}
	}
}

// next advances one instrument's walk by a single step. Step size scales
// with the price level so index-sized and stock-sized instruments both
// move plausibly.
func (f *SimFeed) next(sym string, now time.Time) models.Tick {
	p := f.prices[sym]
	step := p * 0.0004
	p += (f.rng.Float64()*2 - 1) * step
	if p < 1 {
		p = 1
	}
	f.prices[sym] = p

	vol := f.volBase/2 + f.rng.Int63n(f.volBase)
	return models.Tick{
		Symbol:    sym,
		Price:     p,
		Volume:    vol,
		Timestamp: now,
	}
}
