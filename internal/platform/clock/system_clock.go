package clock

import "time"

// SystemClock returns the current wall-clock time in the local zone, so that
// "today" for date-of-birth checks matches the teller's calendar.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }
