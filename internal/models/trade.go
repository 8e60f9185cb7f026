package models

import "time"

// PartialExit records one executed ladder step on a trade.
type PartialExit struct {
	Time      time.Time
	Price     float64
	Quantity  int
	ProfitPct float64
}

// TradeRecord represents a completed trade, persisted by the journal.
type TradeRecord struct {
	ID           string
	Symbol       string
	Side         OptionSide
	EntryTime    time.Time
	EntryPrice   float64
	ExitTime     time.Time
	ExitPrice    float64
	Quantity     int // original quantity
	PnL          float64
	ExitReason   ExitReason
	PartialExits []PartialExit
	MaxUp        float64 // best price move in points while open
	MaxDown      float64 // worst price move in points while open
	HoldDuration time.Duration
	IsPaper      bool
}
