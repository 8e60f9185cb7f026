// Package engine implements the breakout decision and position-management
// core: opening-range capture, breakout levels, entry filters, the daily
// risk governor and the per-position exit state machine.
package engine

import (
	"time"

	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// RangeCapture accumulates ticks for one instrument during the opening-range
// window and freezes an immutable Candle when the window closes. After
// freezing it is inert for the rest of the session.
type RangeCapture struct {
	symbol string
	start  time.Time
	end    time.Time

	open   float64
	high   float64
	low    float64
	close  float64
	volume int64
	ticks  int

	frozen bool
	candle models.Candle
}

// NewRangeCapture creates a capture for the window [start, end).
func NewRangeCapture(symbol string, start, end time.Time) *RangeCapture {
	return &RangeCapture{symbol: symbol, start: start, end: end}
}

// Observe folds one tick into the running candle. Ticks arriving after the
// candle is frozen are ignored.
func (c *RangeCapture) Observe(t models.Tick) {
	if c.frozen {
		return
	}
	if c.ticks == 0 {
		c.open = t.Price
		c.high = t.Price
		c.low = t.Price
	} else {
		if t.Price > c.high {
			c.high = t.Price
		}
		if t.Price < c.low {
			c.low = t.Price
		}
	}
	c.close = t.Price
	c.volume += t.Volume
	c.ticks++
}

// Freeze closes the capture window and returns the immutable opening candle.
// Returns ErrInsufficientData when no ticks were observed; the caller must
// disable the instrument for the session.
func (c *RangeCapture) Freeze() (models.Candle, error) {
	if c.frozen {
		return c.candle, nil
	}
	if c.ticks == 0 {
		return models.Candle{}, apperrors.NewDataError(c.symbol, "opening range", apperrors.ErrInsufficientData)
	}
	c.candle = models.Candle{
		Symbol: c.symbol,
		Start:  c.start,
		End:    c.end,
		Open:   c.open,
		High:   c.high,
		Low:    c.low,
		Close:  c.close,
		Volume: c.volume,
	}
	c.frozen = true
	return c.candle, nil
}

// Frozen reports whether the opening candle has been captured.
func (c *RangeCapture) Frozen() bool {
	return c.frozen
}

// Candle returns the captured candle. Calling it before Freeze is a
// sequencing bug and returns a PreconditionError.
func (c *RangeCapture) Candle() (models.Candle, error) {
	if !c.frozen {
		return models.Candle{}, apperrors.NewPreconditionError("RangeCapture", "capturing", "Candle")
	}
	return c.candle, nil
}
