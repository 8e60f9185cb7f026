package engine

import (
	"fmt"
	"time"

	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)

// Trigger identifies which exit rule fired on an update.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerStopLoss
	TriggerTarget
	TriggerTimeExit
	TriggerLadder
)

// UpdateResult describes the outcome of feeding one price/time update to a
// position. At most one trigger fires per update.
type UpdateResult struct {
	Trigger      Trigger
	Reason       models.ExitReason
	ExitQuantity int
	Closed       bool
	StopMoved    bool
}

// PositionParams carries the risk parameters resolved at entry time.
type PositionParams struct {
	StopDistance    float64 // points below entry
	TargetDistance  float64 // points above entry; 0 means 2x stop distance
	MaxHolding      time.Duration
	TrailingEnabled bool
	ActivationPct   float64 // % of target profit that arms the trail
	TrailPct        float64 // % of open profit given back by the trail
}

// Position is one long option trade and its exit state machine. Both call
// and put sides hold premium long, so all price math is long-only. A
// Position is owned by a single instrument worker and needs no locking.
type Position struct {
	Symbol     string
	Side       models.OptionSide
	EntryPrice float64
	EntryTime  time.Time

	OriginalQty  int
	RemainingQty int

	StopLoss       float64
	Target         float64
	TrailingActive bool

	status   PositionStatus
	params   PositionParams
	ladder   *Ladder
	realized float64

	maxUp   float64
	maxDown float64

	exitPrice  float64
	exitTime   time.Time
	exitReason models.ExitReason
	partials   []models.PartialExit
}

// OpenPosition creates a position at the given entry. The stop sits
// StopDistance below entry; the target sits TargetDistance above, or twice
// the stop distance when TargetDistance is zero.
func OpenPosition(symbol string, side models.OptionSide, entryPrice float64, entryTime time.Time, qty int, params PositionParams, ladder *Ladder) (*Position, error) {
	if entryPrice <= 0 {
		return nil, apperrors.NewDataError(symbol, fmt.Sprintf("non-positive entry price %.2f", entryPrice), nil)
	}
	if qty <= 0 {
		return nil, apperrors.NewDataError(symbol, fmt.Sprintf("non-positive quantity %d", qty), nil)
	}
	if params.StopDistance <= 0 {
		return nil, apperrors.NewDataError(symbol, fmt.Sprintf("non-positive stop distance %.2f", params.StopDistance), nil)
	}
	targetDist := params.TargetDistance
	if targetDist <= 0 {
		targetDist = 2 * params.StopDistance
	}
	if ladder == nil {
		ladder = &Ladder{}
	}
	return &Position{
		Symbol:       symbol,
		Side:         side,
		EntryPrice:   entryPrice,
		EntryTime:    entryTime,
		OriginalQty:  qty,
		RemainingQty: qty,
		StopLoss:     entryPrice - params.StopDistance,
		Target:       entryPrice + targetDist,
		status:       StatusOpen,
		params:       params,
		ladder:       ladder,
	}, nil
}

// Status returns the lifecycle state.
func (p *Position) Status() PositionStatus { return p.status }

// Closed reports whether the position reached its terminal state.
func (p *Position) Closed() bool { return p.status == StatusClosed }

// ProfitPct returns the unrealized profit at the given price as a
// percentage of the entry premium.
func (p *Position) ProfitPct(price float64) float64 {
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// UnrealizedPnL returns the open P&L of the remaining quantity at price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.RemainingQty)
}

// RealizedPnL returns the P&L banked so far, including the final exit once
// the position is closed.
func (p *Position) RealizedPnL() float64 { return p.realized }

// Update feeds one price/time observation through the exit rules. The five
// triggers are evaluated in fixed priority: stop-loss, target, max-holding,
// ladder step, trailing adjustment. A trailing move tightens the stop for
// the next update only; it never closes the update that produced it.
func (p *Position) Update(price float64, now time.Time) (UpdateResult, error) {
	if p.status != StatusOpen {
		return UpdateResult{}, apperrors.NewPreconditionError("position "+p.Symbol, string(p.status), "update")
	}

	move := price - p.EntryPrice
	if move > p.maxUp {
		p.maxUp = move
	}
	if move < p.maxDown {
		p.maxDown = move
	}

	held := now.Sub(p.EntryTime)
	profitPct := p.ProfitPct(price)

	if price <= p.StopLoss {
		p.close(price, now, models.ExitReasonStopLoss)
		return UpdateResult{Trigger: TriggerStopLoss, Reason: models.ExitReasonStopLoss, ExitQuantity: 0, Closed: true}, nil
	}

	if price >= p.Target && !p.ladder.PendingBelow(profitPct) {
		p.close(price, now, models.ExitReasonTarget)
		return UpdateResult{Trigger: TriggerTarget, Reason: models.ExitReasonTarget, Closed: true}, nil
	}

	if held >= p.params.MaxHolding {
		p.close(price, now, models.ExitReasonTimeExit)
		return UpdateResult{Trigger: TriggerTimeExit, Reason: models.ExitReasonTimeExit, Closed: true}, nil
	}

	if step, ok := p.ladder.Due(held, profitPct); ok {
		qty := int(float64(p.RemainingQty) * step.ExitPct / 100)
		if qty >= p.RemainingQty {
			p.close(price, now, models.ExitReasonLadder)
			return UpdateResult{Trigger: TriggerLadder, Reason: models.ExitReasonLadder, Closed: true}, nil
		}
		if qty > 0 {
			p.partialExit(price, now, qty, profitPct)
			return UpdateResult{Trigger: TriggerLadder, Reason: models.ExitReasonLadder, ExitQuantity: qty}, nil
		}
		// step consumed but truncation produced nothing to sell
	}

	moved := p.trail(price)
	return UpdateResult{StopMoved: moved}, nil
}

// trail arms and advances the trailing stop. The stop only ever tightens.
func (p *Position) trail(price float64) bool {
	if !p.params.TrailingEnabled {
		return false
	}
	if !p.TrailingActive {
		targetProfit := p.Target - p.EntryPrice
		if price-p.EntryPrice >= p.params.ActivationPct/100*targetProfit {
			p.TrailingActive = true
		}
	}
	if !p.TrailingActive {
		return false
	}
	candidate := price - p.params.TrailPct/100*(price-p.EntryPrice)
	if candidate > p.StopLoss {
		p.StopLoss = candidate
		return true
	}
	return false
}

// ForceClose closes the position unconditionally at the given price, used
// for session square-off and operator intervention.
func (p *Position) ForceClose(price float64, now time.Time, reason models.ExitReason) (UpdateResult, error) {
	if p.status != StatusOpen {
		return UpdateResult{}, apperrors.NewPreconditionError("position "+p.Symbol, string(p.status), "force close")
	}
	move := price - p.EntryPrice
	if move > p.maxUp {
		p.maxUp = move
	}
	if move < p.maxDown {
		p.maxDown = move
	}
	p.close(price, now, reason)
	return UpdateResult{Reason: reason, Closed: true}, nil
}

func (p *Position) partialExit(price float64, now time.Time, qty int, profitPct float64) {
	p.realized += (price - p.EntryPrice) * float64(qty)
	p.RemainingQty -= qty
	p.partials = append(p.partials, models.PartialExit{
		Time:      now,
		Price:     price,
		Quantity:  qty,
		ProfitPct: profitPct,
	})
}

func (p *Position) close(price float64, now time.Time, reason models.ExitReason) {
	p.realized += (price - p.EntryPrice) * float64(p.RemainingQty)
	p.RemainingQty = 0
	p.exitPrice = price
	p.exitTime = now
	p.exitReason = reason
	p.status = StatusClosed
}

// Record snapshots the closed position as a persistable trade record.
func (p *Position) Record(id string, isPaper bool) (models.TradeRecord, error) {
	if p.status != StatusClosed {
		return models.TradeRecord{}, apperrors.NewPreconditionError("position "+p.Symbol, string(p.status), "record")
	}
	partials := make([]models.PartialExit, len(p.partials))
	copy(partials, p.partials)
	return models.TradeRecord{
		ID:           id,
		Symbol:       p.Symbol,
		Side:         p.Side,
		EntryTime:    p.EntryTime,
		EntryPrice:   p.EntryPrice,
		ExitTime:     p.exitTime,
		ExitPrice:    p.exitPrice,
		Quantity:     p.OriginalQty,
		PnL:          p.realized,
		ExitReason:   p.exitReason,
		PartialExits: partials,
		MaxUp:        p.maxUp,
		MaxDown:      p.maxDown,
		HoldDuration: p.exitTime.Sub(p.EntryTime),
		IsPaper:      isPaper,
	}, nil
}

// ExitReason returns the terminal exit reason, empty while open.
func (p *Position) ExitReason() models.ExitReason { return p.exitReason }

// ExitPrice returns the terminal exit price, zero while open.
func (p *Position) ExitPrice() float64 { return p.exitPrice }
