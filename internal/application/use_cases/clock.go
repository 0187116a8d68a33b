package use_cases

import "time"

type Clock interface {
	NowUTC() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) NowUTC() time.Time {
	return f().UTC()
}

// NewSystemClock returns the wall clock used to stamp journal entries.
func NewSystemClock() Clock {
	return ClockFunc(time.Now)
}

// FixedClock always reports at.
func FixedClock(at time.Time) Clock {
	return ClockFunc(func() time.Time { return at })
}
