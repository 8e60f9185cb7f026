package feed

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// csvTick is one row of a recorded tick file.
type csvTick struct {
	Symbol    string  `csv:"symbol"`
	Price     float64 `csv:"price"`
	Volume    int64   `csv:"volume"`
	Timestamp string  `csv:"timestamp"` // RFC3339
}

// ReplayFeed replays a recorded tick file in row order. Tick timestamps
// come from the file, so replay runs at full speed and the engine's timer
// must be disabled.
type ReplayFeed struct {
	path  string
	ticks []models.Tick
}

// NewReplayFeed loads and validates the tick file up front so a malformed
// file fails before the session starts.
func NewReplayFeed(path string) (*ReplayFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "opening tick file %s", path)
	}
	defer f.Close()

	var rows []*csvTick
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.Wrapf(err, "parsing tick file %s", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDataError("", "tick file is empty", apperrors.ErrInsufficientData)
	}

	ticks := make([]models.Tick, 0, len(rows))
	var prev time.Time
	for i, r := range rows {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return nil, apperrors.Wrapf(err, "row %d: bad timestamp %q", i+1, r.Timestamp)
		}
		if ts.Before(prev) {
			return nil, apperrors.NewDataError(r.Symbol, "out-of-order timestamp "+r.Timestamp, nil)
		}
		prev = ts
		ticks = append(ticks, models.Tick{
			Symbol:    r.Symbol,
			Price:     r.Price,
			Volume:    r.Volume,
			Timestamp: ts,
		})
	}
	return &ReplayFeed{path: path, ticks: ticks}, nil
}

// First returns the earliest tick timestamp in the file.
func (f *ReplayFeed) First() time.Time {
	return f.ticks[0].Timestamp
}

// Last returns the latest tick timestamp in the file.
func (f *ReplayFeed) Last() time.Time {
	return f.ticks[len(f.ticks)-1].Timestamp
}

// Len returns the number of ticks loaded.
func (f *ReplayFeed) Len() int {
	return len(f.ticks)
}

// Start pushes every tick through the handler and returns when the file
// is exhausted or the context is cancelled.
func (f *ReplayFeed) Start(ctx context.Context, h Handler) error {
	for _, t := range f.ticks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		h(t)
	}
	return nil
}
