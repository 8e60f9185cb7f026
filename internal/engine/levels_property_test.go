package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"orb-trader/internal/models"
)

func candleFor(low, span float64) models.Candle {
	return models.Candle{
		Symbol: "nifty",
		Start:  time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC),
		End:    time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC),
		Open:   low,
		High:   low + span,
		Low:    low,
		Close:  low + span/2,
	}
}

// Property: for any captured candle and any non-negative buffer,
// upper = high + buffer and lower = low - buffer exactly, and a zero
// buffer leaves the levels equal to the candle extremes.
func TestProperty_BreakoutLevelsAreExactOffsets(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("upper and lower are exact buffer offsets", prop.ForAll(
		func(low, span, buffer float64) bool {
			c := candleFor(low, span)
			level, err := Levels(c, buffer)
			if err != nil {
				return false
			}
			return level.Upper == c.High+buffer && level.Lower == c.Low-buffer
		},
		gen.Float64Range(50, 50000),
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 50),
	))

	properties.Property("zero buffer means levels equal candle extremes", prop.ForAll(
		func(low, span float64) bool {
			c := candleFor(low, span)
			level, err := Levels(c, 0)
			if err != nil {
				return false
			}
			return level.Upper == c.High && level.Lower == c.Low
		},
		gen.Float64Range(50, 50000),
		gen.Float64Range(0, 500),
	))

	properties.TestingRun(t)
}

func TestLevelsRejectsUncapturedCandle(t *testing.T) {
	_, err := Levels(models.Candle{Symbol: "nifty", High: 105, Low: 100}, 2)
	if err == nil {
		t.Fatal("Levels accepted a candle with no window end")
	}
}
