// Package models provides domain models for the breakout trading engine.
package models

import (
	"time"
)

// OptionSide identifies which option leg a signal or position refers to.
// Both sides are held long; the side only selects call vs put premium.
type OptionSide string

const (
	SideCall OptionSide = "CE"
	SidePut  OptionSide = "PE"
)

// Tick represents a single market data update for one instrument.
type Tick struct {
	Symbol    string
	Price     float64
	Volume    int64
	Timestamp time.Time
}

// Candle represents OHLCV data for a time window. A Candle is immutable
// once emitted by the opening-range capture or the intraday aggregator.
type Candle struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// BreakoutLevel holds the upper/lower breakout thresholds derived from
// an opening-range candle.
type BreakoutLevel struct {
	Symbol string
	Upper  float64
	Lower  float64
	Buffer float64
	Candle Candle
}

// Instrument represents one tradable index underlying.
type Instrument struct {
	Symbol   string
	StepSize int // strike spacing
	Enabled  bool
	Lots     int
	LotSize  int
}

// Quantity returns the order quantity for this instrument.
func (i Instrument) Quantity() int {
	return i.Lots * i.LotSize
}

// IntentAction is the action requested from the order-execution collaborator.
type IntentAction string

const (
	ActionEnter       IntentAction = "ENTER"
	ActionPartialExit IntentAction = "PARTIAL_EXIT"
	ActionFullExit    IntentAction = "FULL_EXIT"
)

// ExitReason explains why a position was reduced or closed.
type ExitReason string

const (
	ExitReasonStopLoss     ExitReason = "STOP_LOSS"
	ExitReasonTarget       ExitReason = "TARGET"
	ExitReasonTimeExit     ExitReason = "TIME_EXIT"
	ExitReasonLadder       ExitReason = "LADDER"
	ExitReasonManual       ExitReason = "MANUAL"
	ExitReasonSessionClose ExitReason = "SESSION_CLOSE"
)

// OrderIntent is an intended order emitted by the engine. The execution
// collaborator owns actual brokerage interaction; the engine operates on
// intended prices only.
type OrderIntent struct {
	Symbol    string
	Side      OptionSide
	Action    IntentAction
	Quantity  int
	PriceHint float64
	Reason    ExitReason
	Timestamp time.Time
}

// EventType classifies trade lifecycle events for the audit collaborator.
type EventType string

const (
	EventEntry       EventType = "ENTRY"
	EventPartialExit EventType = "PARTIAL_EXIT"
	EventExit        EventType = "EXIT"
	EventRejection   EventType = "REJECTION"
	EventDisabled    EventType = "DISABLED"
)

// TradeEvent is an immutable lifecycle record emitted on every position
// transition.
type TradeEvent struct {
	Type      EventType
	Symbol    string
	Side      OptionSide
	Quantity  int
	Price     float64
	Reason    ExitReason
	PnL       float64
	Detail    string
	Timestamp time.Time
}
