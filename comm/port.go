package comm

import (
	"fmt"
	"sync"

	"github.com/sarchlab/keithnet/hooking"
)

// HookPosPortMsgSend marks when a message is sent out from the port.
var HookPosPortMsgSend = &hooking.HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message arrives at a the given port
var HookPosPortMsgRecvd = &hooking.HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgEvicted marks when the oldest inbound message is discarded to
// make room in a full incoming buffer.
var HookPosPortMsgEvicted = &hooking.HookPos{Name: "Port Msg Evicted"}

// HookPosPortMsgRetrieveIncoming marks when an inbound message is retrieved
// from the incoming buffer.
var HookPosPortMsgRetrieveIncoming = &hooking.HookPos{
	Name: "Port Msg Retrieve Incoming",
}

// A Port is owned by a component and is used to plug in connections.
type Port interface {
	hooking.Hookable

	Name() string
	AsRemote() RemotePort

	SetConnection(conn Connection)
	Connection() Connection

	// For connection. Deliver returns the message evicted to make room, if
	// any.
	Deliver(msg Msg) (evicted Msg, err *SendError)

	// For component
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
	NumIncoming() int
}

type defaultPort struct {
	hooking.HookableBase

	lock sync.Mutex
	name string
	conn Connection

	incomingBuf Buffer
	dropOldest  bool
}

// A PortOption changes how a port handles its incoming messages.
type PortOption func(p *defaultPort)

// WithDropOldest makes a full port discard its oldest message to accept a new
// one. Without it, a full port refuses the new message.
func WithDropOldest() PortOption {
	return func(p *defaultPort) {
		p.dropOldest = true
	}
}

// NewPort creates a new port whose incoming buffer holds at most
// incomingBufCap messages.
func NewPort(name string, incomingBufCap int, opts ...PortOption) Port {
	p := new(defaultPort)
	p.name = name
	p.incomingBuf = NewBuffer(name+".IncomingBuf", incomingBufCap)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the name of the port.
func (p *defaultPort) Name() string {
	return p.name
}

// AsRemote returns the remote port name.
func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

// SetConnection sets which connection plugged in to this port.
func (p *defaultPort) SetConnection(conn Connection) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.conn != nil && conn != nil {
		panic(fmt.Sprintf(
			"connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name(),
		))
	}

	p.conn = conn
}

// Connection returns the connection plugged in to this port, if any.
func (p *defaultPort) Connection() Connection {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.conn
}

// Send is used to publish a message from the owner of the port.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.msgMustBeValid(msg)

	conn := p.Connection()
	if conn == nil {
		panic("port " + p.name + " is not connected")
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgSend,
		Item:   msg,
	})

	return conn.Send(msg)
}

// Deliver is used by the connection to hand a message to the port.
func (p *defaultPort) Deliver(msg Msg) (Msg, *SendError) {
	p.lock.Lock()
	defer p.lock.Unlock()

	var evicted Msg

	if !p.incomingBuf.CanPush() {
		if !p.dropOldest {
			return nil, NewSendError()
		}

		evicted = p.incomingBuf.Pop()

		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgEvicted,
			Item:   evicted,
		})
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRecvd,
		Item:   msg,
	})

	p.incomingBuf.Push(msg)

	return evicted, nil
}

// RetrieveIncoming is used by the owner to take a message from the incoming
// buffer. It returns nil if there is no message.
func (p *defaultPort) RetrieveIncoming() Msg {
	p.lock.Lock()
	msg := p.incomingBuf.Pop()
	p.lock.Unlock()

	if msg == nil {
		return nil
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosPortMsgRetrieveIncoming,
		Item:   msg,
	})

	return msg
}

// PeekIncoming returns the first message in the incoming buffer without
// removing it.
func (p *defaultPort) PeekIncoming() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.incomingBuf.Peek()
}

// NumIncoming returns the number of messages waiting in the incoming buffer.
func (p *defaultPort) NumIncoming() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.incomingBuf.Size()
}

func (p *defaultPort) msgMustBeValid(msg Msg) {
	if p.name != string(msg.Meta().Src) {
		panic("sending port is not msg src")
	}

	if msg.Meta().Topic == "" {
		panic("topic is not given")
	}
}
