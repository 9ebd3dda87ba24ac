package control

import (
	"log"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() time.Duration {
	if f <= 0 {
		log.Panic("frequency must be positive")
	}

	return time.Duration(float64(time.Second) / float64(f))
}

// RemainingBudget returns how long to wait after a tick whose work took
// elapsed so that ticks start one period apart. A tick that overran its
// period gets no wait at all.
func RemainingBudget(period, elapsed time.Duration) time.Duration {
	if elapsed >= period {
		return 0
	}

	return period - elapsed
}
