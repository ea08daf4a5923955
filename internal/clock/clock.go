package clock

import "time"

// Clock abstracts wall-clock time so reminder windows, streak walks, and
// schedule context can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// System is the real clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }
