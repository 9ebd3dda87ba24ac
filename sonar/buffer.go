// Package sonar keeps the latest reading of the sonar channels.
package sonar

import (
	"errors"
	"fmt"
	"sync"
)

// NumChannels is the number of sonar channels consumed by the controller.
const NumChannels = 3

// ErrShortReading is returned when an update carries fewer values than there
// are channels.
var ErrShortReading = errors.New("sonar reading too short")

// Reading is one value per sonar channel.
type Reading [NumChannels]float64

// Buffer holds the most recent reading. Channels that were never updated read
// as zero. Update and Snapshot may be called from different goroutines.
type Buffer struct {
	mu      sync.RWMutex
	reading Reading
	updates uint64
}

// NewBuffer creates a zero-initialized buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Update overwrites every channel with the first NumChannels values. Extra
// values are ignored. A short update leaves the buffer untouched.
func (b *Buffer) Update(values []float32) error {
	if len(values) < NumChannels {
		return fmt.Errorf("%w: got %d values, want at least %d",
			ErrShortReading, len(values), NumChannels)
	}

	var r Reading
	for i := range r {
		r[i] = float64(values[i])
	}

	b.mu.Lock()
	b.reading = r
	b.updates++
	b.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current reading.
func (b *Buffer) Snapshot() Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.reading
}

// Updates returns how many updates were accepted.
func (b *Buffer) Updates() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.updates
}
