// Package store persists trade lifecycle events and completed trades.
package store

import (
	"context"
	"time"

	"orb-trader/internal/models"
)

// TradeFilter narrows journal queries.
type TradeFilter struct {
	Symbol string
	Since  time.Time
	Limit  int
}

// Journal is the persistence boundary for the audit stream.
type Journal interface {
	SaveEvent(ctx context.Context, ev models.TradeEvent) error
	SaveTrade(ctx context.Context, rec models.TradeRecord) error
	Trades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)
	DailyPnL(ctx context.Context, day time.Time) (float64, int, error)
	Close() error
}
