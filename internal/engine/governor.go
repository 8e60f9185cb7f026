package engine

import (
	"sync"

	apperrors "orb-trader/internal/errors"
)

// Governor enforces the daily risk limits shared by every instrument
// worker: a maximum number of entries per day and a loss floor. Once a
// limit trips it stays tripped until Reset, even if later wins pull the
// realised P&L back above the floor.
type Governor struct {
	mu sync.Mutex

	maxTrades    int
	maxDailyLoss float64

	trades  int
	pnl     float64
	tripped bool
}

// NewGovernor creates a governor. maxDailyLoss is a negative number; a
// realised P&L at or below it blocks further entries.
func NewGovernor(maxTrades int, maxDailyLoss float64) *Governor {
	return &Governor{maxTrades: maxTrades, maxDailyLoss: maxDailyLoss}
}

// Admit checks whether a new entry is allowed and, if so, counts it.
// The check and the increment are a single atomic step so concurrent
// workers cannot both consume the last slot.
func (g *Governor) Admit() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tripped {
		if g.trades >= g.maxTrades {
			return apperrors.NewLimitError("max_trades_per_day", float64(g.trades), float64(g.maxTrades))
		}
		return apperrors.NewLimitError("max_daily_loss", g.pnl, g.maxDailyLoss)
	}
	if g.trades >= g.maxTrades {
		g.tripped = true
		return apperrors.NewLimitError("max_trades_per_day", float64(g.trades), float64(g.maxTrades))
	}
	g.trades++
	if g.trades >= g.maxTrades {
		g.tripped = true
	}
	return nil
}

// Settle folds the realised P&L of a closed trade into the daily total.
// Partial-exit proceeds are settled once, at terminal close, as part of
// the trade's final P&L.
func (g *Governor) Settle(pnl float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pnl += pnl
	if g.pnl <= g.maxDailyLoss {
		g.tripped = true
	}
}

// Stats returns the current trade count and realised P&L.
func (g *Governor) Stats() (trades int, pnl float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trades, g.pnl
}

// Tripped reports whether any daily limit has been breached.
func (g *Governor) Tripped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripped
}

// Reset clears the counters for a new trading day.
func (g *Governor) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trades = 0
	g.pnl = 0
	g.tripped = false
}
