package engine

import (
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// Levels computes breakout thresholds from a captured opening candle:
// upper = high + buffer, lower = low - buffer. A zero-valued candle (one
// whose window never closed) is rejected with a PreconditionError.
func Levels(c models.Candle, buffer float64) (models.BreakoutLevel, error) {
	if c.End.IsZero() {
		return models.BreakoutLevel{}, apperrors.NewPreconditionError("Candle", "capturing", "Levels")
	}
	return models.BreakoutLevel{
		Symbol: c.Symbol,
		Upper:  c.High + buffer,
		Lower:  c.Low - buffer,
		Buffer: buffer,
		Candle: c,
	}, nil
}
