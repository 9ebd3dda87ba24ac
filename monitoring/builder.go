package monitoring

import (
	"time"

	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/control"
	"github.com/sarchlab/keithnet/logging"
)

// Builder can help building Monitors.
type Builder struct {
	loop            Loop
	bus             Bus
	portNumber      int
	openBrowser     bool
	profileDuration time.Duration
	timing          *control.WorkTimeTracer
}

// MakeBuilder creates a Builder that listens on a random port and profiles
// for one second.
func MakeBuilder() Builder {
	return Builder{
		profileDuration: time.Second,
	}
}

// WithLoop sets the loop to monitor.
func (b Builder) WithLoop(l Loop) Builder {
	b.loop = l
	return b
}

// WithBus sets the bus that sonar readings are published on.
func (b Builder) WithBus(bus Bus) Builder {
	b.bus = bus
	return b
}

// WithPortNumber sets the TCP port of the server. Ports below 1000 other than
// zero are replaced by a random port.
func (b Builder) WithPortNumber(portNumber int) Builder {
	if portNumber != 0 && portNumber < 1000 {
		logging.Warningf("port number %d is not allowed for the monitor, "+
			"using a random port instead", portNumber)
		portNumber = 0
	}

	b.portNumber = portNumber

	return b
}

// WithOpenBrowser makes the server open the dashboard in a browser.
func (b Builder) WithOpenBrowser(open bool) Builder {
	b.openBrowser = open
	return b
}

// WithProfileDuration sets how long a CPU profile request samples.
func (b Builder) WithProfileDuration(d time.Duration) Builder {
	b.profileDuration = d
	return b
}

// WithWorkTimeTracer makes the monitor report the tick timing collected by
// the tracer.
func (b Builder) WithWorkTimeTracer(t *control.WorkTimeTracer) Builder {
	b.timing = t
	return b
}

// Build creates a Monitor and plugs its port into the bus.
func (b Builder) Build(name string) *Monitor {
	if b.loop == nil {
		panic("monitor " + name + " needs a loop")
	}

	if b.bus == nil {
		panic("monitor " + name + " needs a bus")
	}

	m := &Monitor{
		name:            name,
		loop:            b.loop,
		bus:             b.bus,
		portNumber:      b.portNumber,
		openBrowser:     b.openBrowser,
		profileDuration: b.profileDuration,
		timing:          b.timing,
	}

	m.port = comm.NewPort(name+".SonarOut", 1)
	b.bus.PlugIn(m.port)

	m.routes()

	return m
}
