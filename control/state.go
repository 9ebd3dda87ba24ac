package control

// State is the lifecycle state of a Loop.
type State int

// The states a Loop moves through, in order.
const (
	Uninitialized State = iota
	Ready
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON documents.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
