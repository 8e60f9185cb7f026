package engine

import (
	"testing"
	"time"

	"orb-trader/internal/config"
)

func testLadder() *Ladder {
	return NewLadder(config.PartialExitConfig{
		Enabled: true,
		Exits: []config.PartialExitStep{
			{TimeMinutes: 30, MinProfitPercentage: 25, ExitPercentage: 30},
			{TimeMinutes: 45, MinProfitPercentage: 40, ExitPercentage: 50},
		},
	})
}

func TestLadderFiresInTimeOrder(t *testing.T) {
	l := testLadder()

	if _, ok := l.Due(29*time.Minute, 50); ok {
		t.Fatal("step fired before its holding time")
	}

	step, ok := l.Due(30*time.Minute, 50)
	if !ok {
		t.Fatal("first step did not fire at 30 minutes with 50% profit")
	}
	if step.ExitPct != 30 {
		t.Errorf("fired step ExitPct = %.0f, want 30", step.ExitPct)
	}

	// Same call again: the first step is spent.
	if _, ok := l.Due(30*time.Minute, 50); ok {
		t.Error("first step fired twice")
	}

	step, ok = l.Due(45*time.Minute, 50)
	if !ok {
		t.Fatal("second step did not fire at 45 minutes")
	}
	if step.ExitPct != 50 {
		t.Errorf("second step ExitPct = %.0f, want 50", step.ExitPct)
	}
	if l.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", l.Remaining())
	}
}

func TestLadderConsumesGatedOutStep(t *testing.T) {
	l := testLadder()

	// First step due but profit below its gate: consulted and spent.
	if _, ok := l.Due(30*time.Minute, 10); ok {
		t.Fatal("step fired below its profit gate")
	}
	if l.Remaining() != 1 {
		t.Fatalf("Remaining = %d, want 1 after gated-out consultation", l.Remaining())
	}

	// Profit recovers later: the spent step must not fire.
	if _, ok := l.Due(31*time.Minute, 50); ok {
		t.Error("spent step fired after profit recovered")
	}
}

func TestLadderLaterStepCanFireWhenEarlierGatedOut(t *testing.T) {
	l := testLadder()

	// Both steps due at 50 minutes; profit 45% clears both gates, only
	// the earlier fires on this call.
	step, ok := l.Due(50*time.Minute, 45)
	if !ok || step.ExitPct != 30 {
		t.Fatalf("earlier due step did not fire first, got %+v ok=%v", step, ok)
	}

	// A later step with a looser gate: at 22% profit the first step (gate
	// 25%) is consulted and spent, the second (gate 20%) fires in the same
	// pass.
	l = NewLadder(config.PartialExitConfig{
		Enabled: true,
		Exits: []config.PartialExitStep{
			{TimeMinutes: 30, MinProfitPercentage: 25, ExitPercentage: 30},
			{TimeMinutes: 45, MinProfitPercentage: 20, ExitPercentage: 50},
		},
	})
	step, ok = l.Due(50*time.Minute, 22)
	if !ok {
		t.Fatal("second step did not fire when the first was gated out")
	}
	if step.ExitPct != 50 {
		t.Errorf("fired ExitPct = %.0f, want 50", step.ExitPct)
	}
	if l.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", l.Remaining())
	}
}

func TestLadderPendingBelow(t *testing.T) {
	l := testLadder()

	if !l.PendingBelow(20) {
		t.Error("no pending step reported with profit 20%% below both gates")
	}
	if l.PendingBelow(60) {
		t.Error("pending step reported with profit above every gate")
	}

	l.Due(30*time.Minute, 50)
	if !l.PendingBelow(30) {
		t.Error("second step (gate 40%%) not reported pending at 30%% profit")
	}
}

func TestLadderDisabled(t *testing.T) {
	l := NewLadder(config.PartialExitConfig{Enabled: false})
	if _, ok := l.Due(10*time.Hour, 1000); ok {
		t.Error("disabled ladder fired a step")
	}
	if l.PendingBelow(0) {
		t.Error("disabled ladder reports pending steps")
	}
}

func TestLadderSortsUnorderedSteps(t *testing.T) {
	l := NewLadder(config.PartialExitConfig{
		Enabled: true,
		Exits: []config.PartialExitStep{
			{TimeMinutes: 45, MinProfitPercentage: 40, ExitPercentage: 50},
			{TimeMinutes: 30, MinProfitPercentage: 25, ExitPercentage: 30},
		},
	})
	step, ok := l.Due(30*time.Minute, 50)
	if !ok || step.ExitPct != 30 {
		t.Errorf("earliest step by time did not fire first, got %+v ok=%v", step, ok)
	}
}
