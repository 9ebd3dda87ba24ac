// Package motor converts network outputs into motor speed commands.
package motor

// Defaults of the deployed robot: an output of 0 means full reverse, 1 full
// forward.
const (
	DefaultCenter = 0.5
	DefaultScale  = 15.0
)

// Command is a pair of motor speed setpoints.
type Command struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Mapper applies (out - Center) * Scale to each output. It does not clamp.
type Mapper struct {
	Center float64
	Scale  float64
}

// DefaultMapper returns the mapper of the deployed robot.
func DefaultMapper() Mapper {
	return Mapper{Center: DefaultCenter, Scale: DefaultScale}
}

// ToCommand converts one network output into a motor speed.
func (m Mapper) ToCommand(out float64) float64 {
	return (out - m.Center) * m.Scale
}

// Map converts both network outputs.
func (m Mapper) Map(left, right float64) Command {
	return Command{
		Left:  m.ToCommand(left),
		Right: m.ToCommand(right),
	}
}

// InRange reports whether the output lies in [0, 1], the range the mapping
// is designed for.
func InRange(out float64) bool {
	return out >= 0 && out <= 1
}
