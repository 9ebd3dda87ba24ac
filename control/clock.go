package control

import "time"

// Clock tells the loop the time and lets it wait for the next tick boundary.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// WallClock returns the clock backed by the time package.
func WallClock() Clock {
	return wallClock{}
}
