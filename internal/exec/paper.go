// Package exec provides order-intent consumers. The engine emits intended
// orders; implementations here decide what happens to them.
package exec

import (
	"sync"

	"github.com/rs/zerolog"

	"orb-trader/internal/models"
)

// PaperExecutor accepts every intent at its hinted price and tracks the
// simulated net quantity per symbol. It never talks to a brokerage.
type PaperExecutor struct {
	logger zerolog.Logger

	mu       sync.Mutex
	net      map[string]int
	accepted int
}

// NewPaperExecutor creates a paper executor.
func NewPaperExecutor(logger zerolog.Logger) *PaperExecutor {
	return &PaperExecutor{
		logger: logger,
		net:    make(map[string]int),
	}
}

// SubmitIntent accepts the intent at its price hint.
func (p *PaperExecutor) SubmitIntent(in models.OrderIntent) {
	p.mu.Lock()
	switch in.Action {
	case models.ActionEnter:
		p.net[in.Symbol] += in.Quantity
	case models.ActionPartialExit, models.ActionFullExit:
		p.net[in.Symbol] -= in.Quantity
	}
	p.accepted++
	p.mu.Unlock()

	p.logger.Info().
		Str("symbol", in.Symbol).
		Str("side", string(in.Side)).
		Str("action", string(in.Action)).
		Int("quantity", in.Quantity).
		Float64("price", in.PriceHint).
		Str("reason", string(in.Reason)).
		Msg("Paper order accepted")
}

// NetQuantity returns the simulated open quantity for a symbol.
func (p *PaperExecutor) NetQuantity(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.net[symbol]
}

// Accepted returns the number of intents accepted so far.
func (p *PaperExecutor) Accepted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accepted
}
