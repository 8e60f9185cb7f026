package engine

import (
	"sort"
	"time"

	"orb-trader/internal/config"
)

// LadderStep is one scheduled partial exit: after the holding duration,
// provided the unrealised profit clears the threshold, sell a percentage
// of the remaining quantity.
type LadderStep struct {
	After        time.Duration
	MinProfitPct float64
	ExitPct      float64
}

// Ladder tracks which partial-exit steps have been consumed for one
// position. Each step is consulted once, in time order, when an update
// arrives past its holding threshold: it either fires a partial exit or
// is skipped for good if the profit gate fails.
type Ladder struct {
	steps    []LadderStep
	consumed []bool
}

// NewLadder builds a ladder from configuration, ordered by holding time.
func NewLadder(cfg config.PartialExitConfig) *Ladder {
	if !cfg.Enabled || len(cfg.Exits) == 0 {
		return &Ladder{}
	}
	steps := make([]LadderStep, 0, len(cfg.Exits))
	for _, e := range cfg.Exits {
		steps = append(steps, LadderStep{
			After:        time.Duration(e.TimeMinutes) * time.Minute,
			MinProfitPct: e.MinProfitPercentage,
			ExitPct:      e.ExitPercentage,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].After < steps[j].After })
	return &Ladder{steps: steps, consumed: make([]bool, len(steps))}
}

// Due consults every unconsumed step whose holding time has elapsed, in
// ascending time order, consuming each. The first one whose profit gate
// passes is returned; gated-out steps are spent without firing. At most
// one step fires per call.
func (l *Ladder) Due(held time.Duration, profitPct float64) (LadderStep, bool) {
	for i, s := range l.steps {
		if l.consumed[i] {
			continue
		}
		if held < s.After {
			break
		}
		l.consumed[i] = true
		if profitPct >= s.MinProfitPct {
			return s, true
		}
	}
	return LadderStep{}, false
}

// PendingBelow reports whether any unconsumed step has a profit threshold
// above the given profit. Full target exits defer to such steps so a
// scheduled scale-out is not pre-empted by a marginal target touch.
func (l *Ladder) PendingBelow(profitPct float64) bool {
	for i, s := range l.steps {
		if !l.consumed[i] && s.MinProfitPct > profitPct {
			return true
		}
	}
	return false
}

// Remaining returns the number of unconsumed steps.
func (l *Ladder) Remaining() int {
	n := 0
	for _, c := range l.consumed {
		if !c {
			n++
		}
	}
	return n
}
