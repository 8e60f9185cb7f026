package clock

import "time"

// SessionClock answers the two session-timing questions the engine needs:
// whether the opening-range capture window has closed, and whether the hard
// session-end time has been reached. It is a pure function of the supplied
// time; the only state is the immutable session-open timestamp.
type SessionClock struct {
	open          time.Time
	captureWindow time.Duration
	forceCloseAt  time.Time
}

// NewSessionClock creates a session clock for a session opening at open,
// with the given capture window and hard close time.
func NewSessionClock(open time.Time, captureWindow time.Duration, forceCloseAt time.Time) *SessionClock {
	return &SessionClock{
		open:          open,
		captureWindow: captureWindow,
		forceCloseAt:  forceCloseAt,
	}
}

// Open returns the session-open timestamp.
func (s *SessionClock) Open() time.Time {
	return s.open
}

// CaptureWindowEnd returns the instant at which the capture window closes.
func (s *SessionClock) CaptureWindowEnd() time.Time {
	return s.open.Add(s.captureWindow)
}

// CaptureWindowClosed reports whether the opening-range capture window has
// elapsed at the given time.
func (s *SessionClock) CaptureWindowClosed(now time.Time) bool {
	return !now.Before(s.CaptureWindowEnd())
}

// ForceCloseDue reports whether the hard session-end time has been reached.
func (s *SessionClock) ForceCloseDue(now time.Time) bool {
	return !now.Before(s.forceCloseAt)
}
