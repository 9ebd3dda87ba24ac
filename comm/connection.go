package comm

import "github.com/sarchlab/keithnet/hooking"

// SendError marks a failure send or receive
type SendError struct{}

// NewSendError creates a SendError
func NewSendError() *SendError {
	return new(SendError)
}

// Error makes SendError usable as an error value.
func (e *SendError) Error() string {
	return "port cannot accept message"
}

// A Connection is responsible for delivering messages to the ports that
// subscribed to their topic.
type Connection interface {
	hooking.Hookable

	Name() string
	PlugIn(port Port)
	Unplug(port Port)
	Send(msg Msg) *SendError
}

// HookPosConnDeliver marks a connection delivered a message.
var HookPosConnDeliver = &hooking.HookPos{Name: "Conn Deliver"}

// HookPosConnDrop marks a connection failed to deliver a message because the
// destination port was full.
var HookPosConnDrop = &hooking.HookPos{Name: "Conn Drop"}
