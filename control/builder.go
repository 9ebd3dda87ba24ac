package control

import (
	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/motor"
	"github.com/sarchlab/keithnet/nn"
	"github.com/sarchlab/keithnet/sonar"
)

// Builder can help building Loops.
type Builder struct {
	bus       Bus
	network   nn.Network
	freq      Freq
	hormone   float64
	mapper    motor.Mapper
	topics    Topics
	clock     Clock
	queueSize int
}

// MakeBuilder creates a Builder with the defaults of the deployed robot:
// 10 Hz, hormone 0, the default motor mapping and a sonar queue of 100.
func MakeBuilder() Builder {
	return Builder{
		freq:      10 * Hz,
		mapper:    motor.DefaultMapper(),
		topics:    DefaultTopics(),
		clock:     WallClock(),
		queueSize: 100,
	}
}

// WithBus sets the bus the loop plugs its ports into.
func (b Builder) WithBus(bus Bus) Builder {
	b.bus = bus
	return b
}

// WithNetwork sets the network capability. It must not be configured yet.
func (b Builder) WithNetwork(n nn.Network) Builder {
	b.network = n
	return b
}

// WithFreq sets the tick frequency.
func (b Builder) WithFreq(f Freq) Builder {
	b.freq = f
	return b
}

// WithHormone sets the hormone level applied before every step.
func (b Builder) WithHormone(h float64) Builder {
	b.hormone = h
	return b
}

// WithMapper sets the output to motor command mapping.
func (b Builder) WithMapper(m motor.Mapper) Builder {
	b.mapper = m
	return b
}

// WithTopics sets the topic names.
func (b Builder) WithTopics(t Topics) Builder {
	b.topics = t
	return b
}

// WithClock sets the clock used to pace the ticks.
func (b Builder) WithClock(c Clock) Builder {
	b.clock = c
	return b
}

// WithQueueSize sets how many sonar messages can wait between two ticks. When
// the queue is full the oldest waiting message is discarded.
func (b Builder) WithQueueSize(n int) Builder {
	b.queueSize = n
	return b
}

// Build creates a Loop and plugs its ports into the bus.
func (b Builder) Build(name string) *Loop {
	if b.bus == nil {
		panic("loop " + name + " needs a bus")
	}

	if b.network == nil {
		panic("loop " + name + " needs a network")
	}

	// Frequencies are checked here rather than on the first tick.
	_ = b.freq.Period()

	l := &Loop{
		name:       name,
		bus:        b.bus,
		controller: nn.NewController(b.network),
		sensors:    sonar.NewBuffer(),
		mapper:     b.mapper,
		hormone:    b.hormone,
		freq:       b.freq,
		clock:      b.clock,
		topics:     b.topics,
	}

	l.sonarPort = comm.NewPort(name+".SonarPort", b.queueSize,
		comm.WithDropOldest())
	l.motorPort = comm.NewPort(name+".MotorPort", 1)

	b.bus.PlugIn(l.sonarPort)
	b.bus.PlugIn(l.motorPort)

	return l
}
