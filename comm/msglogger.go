package comm

import (
	"fmt"

	"github.com/sarchlab/keithnet/hooking"
	"github.com/sarchlab/keithnet/logging"
)

// PortMsgLogger is a hook for logging messages as they go across a Port. It
// writes at the debug level.
type PortMsgLogger struct {
	printf func(format string, args ...any)
}

// NewPortMsgLogger returns a PortMsgLogger that writes into the package
// logger.
func NewPortMsgLogger() *PortMsgLogger {
	return &PortMsgLogger{printf: logging.Debugf}
}

// Func writes the message information into the logger
func (h *PortMsgLogger) Func(ctx hooking.HookCtx) {
	msg, ok := ctx.Item.(Msg)
	if !ok {
		return
	}

	port, ok := ctx.Domain.(Port)
	if !ok {
		return
	}

	meta := msg.Meta()

	switch ctx.Pos {
	case HookPosPortMsgSend:
		h.printf("%s sent %s on %s: %s", port.Name(), meta.ID, meta.Topic, describe(msg))
	case HookPosPortMsgRecvd:
		h.printf("%s received %s on %s: %s", port.Name(), meta.ID, meta.Topic, describe(msg))
	case HookPosPortMsgEvicted:
		h.printf("%s evicted %s to make room", port.Name(), meta.ID)
	case HookPosPortMsgRetrieveIncoming:
		h.printf("%s consumed %s", port.Name(), meta.ID)
	}
}

func describe(msg Msg) string {
	switch m := msg.(type) {
	case *SonarMsg:
		return fmt.Sprintf("ranges %v", m.Ranges)
	case *MotorCmdMsg:
		return fmt.Sprintf("speed %v", m.Speed)
	default:
		return fmt.Sprintf("%T", msg)
	}
}
