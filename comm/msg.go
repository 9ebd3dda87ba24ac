// Package comm provides the message bus the controller talks through: typed
// messages, ports with bounded incoming buffers and a topic-based direct
// connection.
package comm

import "time"

// A RemotePort is a string that refers to another port.
type RemotePort string

// A Msg is a piece of information that is transferred between components.
type Msg interface {
	Meta() *MsgMeta
}

// MsgMeta contains the meta data that is attached to every message.
type MsgMeta struct {
	ID       string
	Src      RemotePort
	Topic    string
	SendTime time.Time
}

// SonarMsg carries one sample of every sonar channel. Only the first three
// ranges are consumed by the controller.
type SonarMsg struct {
	MsgMeta

	Ranges []float32
}

// Meta returns the meta data of the message.
func (m *SonarMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

// SonarMsgBuilder can build sonar messages.
type SonarMsgBuilder struct {
	src    RemotePort
	topic  string
	ranges []float32
}

// WithSrc sets the source of the message.
func (b SonarMsgBuilder) WithSrc(src RemotePort) SonarMsgBuilder {
	b.src = src
	return b
}

// WithTopic sets the topic the message is published on.
func (b SonarMsgBuilder) WithTopic(topic string) SonarMsgBuilder {
	b.topic = topic
	return b
}

// WithRanges sets the sonar ranges.
func (b SonarMsgBuilder) WithRanges(ranges ...float32) SonarMsgBuilder {
	b.ranges = ranges
	return b
}

// Build creates a new SonarMsg.
func (b SonarMsgBuilder) Build() *SonarMsg {
	return &SonarMsg{
		MsgMeta: MsgMeta{
			ID:    GetIDGenerator().Generate(),
			Src:   b.src,
			Topic: b.topic,
		},
		Ranges: append([]float32(nil), b.ranges...),
	}
}

// MotorCmdMsg carries a single motor speed setpoint.
type MotorCmdMsg struct {
	MsgMeta

	Speed float32
}

// Meta returns the meta data of the message.
func (m *MotorCmdMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

// MotorCmdMsgBuilder can build motor command messages.
type MotorCmdMsgBuilder struct {
	src   RemotePort
	topic string
	speed float32
}

// WithSrc sets the source of the message.
func (b MotorCmdMsgBuilder) WithSrc(src RemotePort) MotorCmdMsgBuilder {
	b.src = src
	return b
}

// WithTopic sets the topic the message is published on.
func (b MotorCmdMsgBuilder) WithTopic(topic string) MotorCmdMsgBuilder {
	b.topic = topic
	return b
}

// WithSpeed sets the motor speed.
func (b MotorCmdMsgBuilder) WithSpeed(speed float32) MotorCmdMsgBuilder {
	b.speed = speed
	return b
}

// Build creates a new MotorCmdMsg.
func (b MotorCmdMsgBuilder) Build() *MotorCmdMsg {
	return &MotorCmdMsg{
		MsgMeta: MsgMeta{
			ID:    GetIDGenerator().Generate(),
			Src:   b.src,
			Topic: b.topic,
		},
		Speed: b.speed,
	}
}
