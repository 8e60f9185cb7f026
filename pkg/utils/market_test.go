package utils

import (
	"testing"
	"time"
)

func TestIsTradingDay(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, IndiaLocation)
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, IndiaLocation)
	sunday := time.Date(2025, 6, 8, 10, 0, 0, 0, IndiaLocation)

	if !IsTradingDay(monday) {
		t.Error("Monday reported as non-trading")
	}
	if IsTradingDay(saturday) || IsTradingDay(sunday) {
		t.Error("weekend reported as trading")
	}
}

func TestNextTradingDay(t *testing.T) {
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, IndiaLocation)
	next := NextTradingDay(saturday)
	if next.Weekday() != time.Monday {
		t.Errorf("NextTradingDay(Saturday) = %v", next.Weekday())
	}

	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, IndiaLocation)
	if !NextTradingDay(monday).Equal(monday) {
		t.Error("NextTradingDay moved off an already-valid day")
	}
}

func TestAtWallClockAndSession(t *testing.T) {
	day := time.Date(2025, 6, 2, 23, 50, 0, 0, IndiaLocation)
	open := AtWallClock(day, 9, 15)
	squareOff := AtWallClock(day, 15, 15)

	if open.Hour() != 9 || open.Minute() != 15 || open.Day() != 2 {
		t.Errorf("AtWallClock = %v", open)
	}
	if !WithinSession(AtWallClock(day, 12, 0), open, squareOff) {
		t.Error("noon not within session")
	}
	if WithinSession(squareOff, open, squareOff) {
		t.Error("square-off instant counted as within session")
	}
	if WithinSession(AtWallClock(day, 9, 14), open, squareOff) {
		t.Error("pre-open counted as within session")
	}
}
