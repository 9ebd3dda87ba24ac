// Package control runs the sense-compute-actuate cycle: drain the sonar
// messages, evaluate the network and publish one command per motor, at a
// fixed rate.
package control

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/hooking"
	"github.com/sarchlab/keithnet/logging"
	"github.com/sarchlab/keithnet/motor"
	"github.com/sarchlab/keithnet/nn"
	"github.com/sarchlab/keithnet/sonar"
)

// HookPosTickStart marks the beginning of a tick. The item is the number of
// the tick.
var HookPosTickStart = &hooking.HookPos{Name: "Tick Start"}

// HookPosTickEnd marks the end of a tick. The item is the TickRecord.
var HookPosTickEnd = &hooking.HookPos{Name: "Tick End"}

// Bus is the part of the message bus the loop needs.
type Bus interface {
	comm.Connection
	Subscribe(topic string, port comm.Port)
	Unsubscribe(topic string, port comm.Port)
}

// Topics names the topics the loop talks on.
type Topics struct {
	Sonar string
	Left  string
	Right string
}

// DefaultTopics returns the topic names of the deployed robot.
func DefaultTopics() Topics {
	return Topics{
		Sonar: "sonar",
		Left:  "leftmotors",
		Right: "rightmotors",
	}
}

// ParameterSource provides the genome once the network knows how many
// parameters it needs.
type ParameterSource func(expectedCount int) ([]float64, error)

// TickRecord describes what happened in one tick.
type TickRecord struct {
	Tick     uint64                 `json:"tick"`
	Start    time.Time              `json:"start"`
	Drained  int                    `json:"drained"`
	Rejected int                    `json:"rejected"`
	Inputs   sonar.Reading          `json:"inputs"`
	Hormone  float64                `json:"hormone"`
	Outputs  [nn.NumOutputs]float64 `json:"outputs"`
	Command  motor.Command          `json:"command"`
	Work     time.Duration          `json:"work_ns"`
}

// Loop is the controller of the robot.
type Loop struct {
	hooking.HookableBase

	name       string
	bus        Bus
	sonarPort  comm.Port
	motorPort  comm.Port
	controller *nn.Controller
	sensors    *sonar.Buffer
	mapper     motor.Mapper
	hormone    float64
	freq       Freq
	clock      Clock
	topics     Topics

	tickLock  sync.Mutex
	unbounded bool

	lock      sync.RWMutex
	state     State
	tickCount uint64
	last      TickRecord
}

// Name returns the name of the loop.
func (l *Loop) Name() string {
	return l.name
}

// SonarPort returns the port the loop receives sonar messages on.
func (l *Loop) SonarPort() comm.Port {
	return l.sonarPort
}

// MotorPort returns the port the loop publishes motor commands from.
func (l *Loop) MotorPort() comm.Port {
	return l.motorPort
}

// Topics returns the topics the loop talks on.
func (l *Loop) Topics() Topics {
	return l.topics
}

// Freq returns the tick frequency.
func (l *Loop) Freq() Freq {
	return l.freq
}

// Hormone returns the hormone level set before every step.
func (l *Loop) Hormone() float64 {
	return l.hormone
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state
}

// TickCount returns the number of completed ticks.
func (l *Loop) TickCount() uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.tickCount
}

// LastTick returns the record of the latest tick.
func (l *Loop) LastTick() TickRecord {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.last
}

// SensorReading returns the reading the next tick would use if no more sonar
// messages arrived.
func (l *Loop) SensorReading() sonar.Reading {
	return l.sensors.Snapshot()
}

// SensorUpdates returns how many sonar messages have been accepted.
func (l *Loop) SensorUpdates() uint64 {
	return l.sensors.Updates()
}

// Init configures the network for the deployment topology and loads the
// genome provided by src. On success the loop is Ready.
func (l *Loop) Init(src ParameterSource) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.state != Uninitialized {
		return fmt.Errorf("loop %s is %s, want %s", l.name, l.state, Uninitialized)
	}

	l.controller.Configure()
	expected := l.controller.ExpectedParameterCount()

	params, err := src(expected)
	if err != nil {
		return err
	}

	if err := l.controller.LoadParameters(params); err != nil {
		return err
	}

	logging.Infof("%s: loaded %d parameters for topology %s",
		l.name, expected, l.controller.Topology())

	l.state = Ready

	return nil
}

// Run subscribes to the sonar topic and ticks at the loop frequency until ctx
// is done. Cancellation is observed between ticks only. Run returns nil on a
// clean stop.
func (l *Loop) Run(ctx context.Context) error {
	l.lock.Lock()
	if l.state != Ready {
		l.lock.Unlock()
		return fmt.Errorf("loop %s is %s, want %s", l.name, l.state, Ready)
	}

	l.bus.Subscribe(l.topics.Sonar, l.sonarPort)
	l.state = Running
	l.lock.Unlock()

	defer l.stop()

	period := l.freq.Period()
	logging.Infof("%s: running at %.2f Hz (period %s)", l.name, float64(l.freq), period)

	for {
		if ctx.Err() != nil {
			return nil
		}

		start := l.clock.Now()
		l.Tick()
		wait := RemainingBudget(period, l.clock.Now().Sub(start))

		select {
		case <-ctx.Done():
			return nil
		case <-l.clock.After(wait):
		}
	}
}

func (l *Loop) stop() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.bus.Unsubscribe(l.topics.Sonar, l.sonarPort)
	l.state = Stopped

	logging.Infof("%s: stopped after %d ticks", l.name, l.tickCount)
}

// Tick runs one cycle. The loop must be Ready or Running.
func (l *Loop) Tick() TickRecord {
	l.tickLock.Lock()
	defer l.tickLock.Unlock()

	l.lock.RLock()
	state, tickNum := l.state, l.tickCount+1
	l.lock.RUnlock()

	if state != Ready && state != Running {
		log.Panicf("loop %s ticked while %s", l.name, state)
	}

	start := l.clock.Now()
	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosTickStart,
		Item:   tickNum,
	})

	drained, rejected := l.drainSonar()
	inputs := l.sensors.Snapshot()

	l.controller.SetHormone(l.hormone)
	outputs := l.controller.Step([nn.NumInputs]float64(inputs))
	l.checkBounds(outputs)

	cmd := l.mapper.Map(outputs[0], outputs[1])
	l.publish(l.topics.Left, cmd.Left)
	l.publish(l.topics.Right, cmd.Right)

	rec := TickRecord{
		Tick:     tickNum,
		Start:    start,
		Drained:  drained,
		Rejected: rejected,
		Inputs:   inputs,
		Hormone:  l.hormone,
		Outputs:  outputs,
		Command:  cmd,
		Work:     l.clock.Now().Sub(start),
	}

	l.lock.Lock()
	l.tickCount = tickNum
	l.last = rec
	l.lock.Unlock()

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosTickEnd,
		Item:   rec,
	})

	return rec
}

// drainSonar consumes the messages that were waiting when the tick started.
// Messages that arrive meanwhile stay for the next tick.
func (l *Loop) drainSonar() (drained, rejected int) {
	pending := l.sonarPort.NumIncoming()

	for i := 0; i < pending; i++ {
		msg := l.sonarPort.RetrieveIncoming()
		if msg == nil {
			break
		}

		sonarMsg, ok := msg.(*comm.SonarMsg)
		if !ok {
			logging.Warningf("%s: ignoring %T on topic %s",
				l.name, msg, msg.Meta().Topic)
			rejected++
			continue
		}

		if err := l.sensors.Update(sonarMsg.Ranges); err != nil {
			logging.Warningf("%s: ignoring sonar message %s: %v",
				l.name, sonarMsg.ID, err)
			rejected++
			continue
		}

		drained++
	}

	return drained, rejected
}

func (l *Loop) checkBounds(outputs [nn.NumOutputs]float64) {
	inRange := motor.InRange(outputs[0]) && motor.InRange(outputs[1])

	switch {
	case !inRange && !l.unbounded:
		logging.Warningf("%s: network output %v outside [0,1], commands are not clamped",
			l.name, outputs)
	case inRange && l.unbounded:
		logging.Infof("%s: network output back within [0,1]", l.name)
	}

	l.unbounded = !inRange
}

func (l *Loop) publish(topic string, speed float64) {
	msg := comm.MotorCmdMsgBuilder{}.
		WithSrc(l.motorPort.AsRemote()).
		WithTopic(topic).
		WithSpeed(float32(speed)).
		Build()

	if err := l.motorPort.Send(msg); err != nil {
		logging.Debugf("%s: a subscriber of %s dropped a motor command",
			l.name, topic)
	}
}
