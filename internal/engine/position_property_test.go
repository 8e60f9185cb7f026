package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"orb-trader/internal/config"
	"orb-trader/internal/models"
)

// Property: once trailing is active the stop never retreats, whatever the
// subsequent price path does. A rise followed by a dip leaves the stop at
// its high-water mark.
func TestProperty_TrailingStopIsMonotone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	pathGen := gen.SliceOfN(40, gen.Float64Range(-3, 4))

	properties.Property("stop never decreases across updates", prop.ForAll(
		func(moves []float64) bool {
			params := PositionParams{
				StopDistance:    30,
				TargetDistance:  200,
				MaxHolding:      24 * time.Hour,
				TrailingEnabled: true,
				ActivationPct:   1, // trailing arms after a 2-point move
				TrailPct:        50,
			}
			p, err := OpenPosition("nifty", models.SideCall, 100, entryTime, 75, params, nil)
			if err != nil {
				return false
			}

			price := 100.0
			prevStop := p.StopLoss
			for i, m := range moves {
				price += m
				if price < 1 {
					price = 1
				}
				if _, err := p.Update(price, entryTime.Add(time.Duration(i+1)*time.Second)); err != nil {
					return false
				}
				if p.StopLoss < prevStop {
					return false
				}
				prevStop = p.StopLoss
				if p.Closed() {
					break
				}
			}
			return true
		},
		pathGen,
	))

	properties.TestingRun(t)
}

// Property: remaining quantity always equals the original quantity minus
// the sum of partial-exit quantities, never goes negative, and reaches
// zero exactly at the terminal close.
func TestProperty_QuantityIsConserved(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("original = remaining + partial exits at every step", prop.ForAll(
		func(qty int, exitPct1, exitPct2 float64, moves []float64) bool {
			ladder := NewLadder(config.PartialExitConfig{
				Enabled: true,
				Exits: []config.PartialExitStep{
					{TimeMinutes: 1, MinProfitPercentage: 1, ExitPercentage: exitPct1},
					{TimeMinutes: 2, MinProfitPercentage: 2, ExitPercentage: exitPct2},
				},
			})
			params := PositionParams{
				StopDistance:   30,
				TargetDistance: 200,
				MaxHolding:     time.Hour,
			}
			p, err := OpenPosition("nifty", models.SideCall, 100, entryTime, qty, params, ladder)
			if err != nil {
				return false
			}

			price := 100.0
			exited := 0
			for i, m := range moves {
				price += m
				if price < 1 {
					price = 1
				}
				res, err := p.Update(price, entryTime.Add(time.Duration(i+1)*30*time.Second))
				if err != nil {
					return false
				}
				exited += res.ExitQuantity
				if p.RemainingQty < 0 || p.RemainingQty > p.OriginalQty {
					return false
				}
				if !res.Closed && p.OriginalQty-exited != p.RemainingQty {
					return false
				}
				if res.Closed {
					return p.RemainingQty == 0
				}
			}
			return true
		},
		gen.IntRange(1, 500),
		gen.Float64Range(1, 99),
		gen.Float64Range(1, 99),
		gen.SliceOfN(30, gen.Float64Range(-8, 9)),
	))

	properties.TestingRun(t)
}
