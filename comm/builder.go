package comm

import "time"

// Builder can help building a Bus.
type Builder struct {
	now func() time.Time
}

// MakeBuilder creates a Builder with the wall clock as time source.
func MakeBuilder() Builder {
	return Builder{now: time.Now}
}

// WithTimeSource sets the function used to stamp the send time of messages.
func (b Builder) WithTimeSource(now func() time.Time) Builder {
	b.now = now
	return b
}

// Build creates a new Bus.
func (b Builder) Build(name string) *Bus {
	return &Bus{
		name:        name,
		now:         b.now,
		ports:       make(map[RemotePort]Port),
		subscribers: make(map[string][]Port),
		stats:       make(map[string]*TopicStats),
	}
}
