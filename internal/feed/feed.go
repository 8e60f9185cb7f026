// Package feed provides tick sources for the engine: a seeded random-walk
// simulator for paper sessions and a CSV replay source for backtesting
// recorded sessions.
package feed

import (
	"context"

	"orb-trader/internal/models"
)

// Handler consumes one tick. Implementations must not block; the engine
// side enqueues and returns.
type Handler func(models.Tick)

// TickSource delivers an ordered tick stream per instrument. Start blocks
// until the context is cancelled or the source is exhausted.
type TickSource interface {
	Start(ctx context.Context, h Handler) error
}
