// Package utils provides market calendar helpers for Indian exchanges.
package utils

import "time"

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// IsTradingDay reports whether t falls on a weekday. Exchange holidays are
// not modelled; the operator is expected not to run on them.
func IsTradingDay(t time.Time) bool {
	wd := t.In(IndiaLocation).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextTradingDay returns the first weekday on or after t.
func NextTradingDay(t time.Time) time.Time {
	d := t.In(IndiaLocation)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AtWallClock resolves an HH:MM wall-clock time onto t's calendar day in
// the Indian market timezone.
func AtWallClock(t time.Time, hour, minute int) time.Time {
	d := t.In(IndiaLocation)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, IndiaLocation)
}

// WithinSession reports whether now is inside [open, squareOff).
func WithinSession(now, open, squareOff time.Time) bool {
	return !now.Before(open) && now.Before(squareOff)
}
