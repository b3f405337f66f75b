package clock

import "time"

// Clock is the single time source for every time-dependent predicate.
// Injecting it lets tests pin "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New returns the wall-clock backed implementation.
func New() Clock { return systemClock{} }

// Fixed is a clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }
