package engine

import (
	"sync"
	"testing"

	apperrors "orb-trader/internal/errors"
)

func TestGovernorMaxTrades(t *testing.T) {
	g := NewGovernor(2, -2000)

	if err := g.Admit(); err != nil {
		t.Fatalf("first Admit: %v", err)
	}
	if err := g.Admit(); err != nil {
		t.Fatalf("second Admit: %v", err)
	}

	err := g.Admit()
	var limitErr *apperrors.LimitError
	if !apperrors.As(err, &limitErr) {
		t.Fatalf("third Admit = %v, want LimitError", err)
	}
	if limitErr.Rule != "max_trades_per_day" {
		t.Errorf("rule = %q, want max_trades_per_day", limitErr.Rule)
	}
	if trades, _ := g.Stats(); trades != 2 {
		t.Errorf("trade count = %d, want 2", trades)
	}
}

func TestGovernorLossFloorIsSticky(t *testing.T) {
	g := NewGovernor(100, -2000)

	if err := g.Admit(); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	g.Settle(-2500)

	if err := g.Admit(); err == nil {
		t.Fatal("Admit allowed after loss floor breach")
	}

	// A later winning settle must not re-open the day.
	g.Settle(3000)
	err := g.Admit()
	var limitErr *apperrors.LimitError
	if !apperrors.As(err, &limitErr) {
		t.Fatalf("Admit after recovery = %v, want LimitError", err)
	}
	if limitErr.Rule != "max_daily_loss" {
		t.Errorf("rule = %q, want max_daily_loss", limitErr.Rule)
	}
}

func TestGovernorExactFloorTrips(t *testing.T) {
	g := NewGovernor(100, -2000)
	g.Settle(-2000)
	if !g.Tripped() {
		t.Error("P&L exactly at the floor did not trip the governor")
	}
}

func TestGovernorConcurrentAdmits(t *testing.T) {
	const maxTrades = 5
	const workers = 50
	g := NewGovernor(maxTrades, -1e9)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Admit() == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != maxTrades {
		t.Errorf("%d admits accepted, want exactly %d", accepted, maxTrades)
	}
}

func TestGovernorReset(t *testing.T) {
	g := NewGovernor(1, -100)
	g.Admit()
	g.Settle(-500)
	g.Reset()

	if g.Tripped() {
		t.Error("governor still tripped after reset")
	}
	if err := g.Admit(); err != nil {
		t.Errorf("Admit after reset: %v", err)
	}
}
