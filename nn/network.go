// Package nn holds the neural network capability driven by the control loop
// and a hormone-modulated feedforward implementation of it.
package nn

import "fmt"

// Topology lists the widths of the layers of a feedforward network, from the
// input layer to the output layer.
type Topology []int

// Deployment widths.
const (
	NumInputs  = 3
	NumHidden  = 8
	NumOutputs = 2
)

// DeploymentTopology returns the topology the controller is deployed with.
func DeploymentTopology() Topology {
	return Topology{NumInputs, NumHidden, NumOutputs}
}

// Inputs returns the width of the input layer.
func (t Topology) Inputs() int {
	return t[0]
}

// Outputs returns the width of the output layer.
func (t Topology) Outputs() int {
	return t[len(t)-1]
}

// Validate checks that the topology has at least an input and an output layer
// and that every layer has at least one node.
func (t Topology) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("topology needs at least 2 layers, got %d", len(t))
	}

	for i, w := range t {
		if w <= 0 {
			return fmt.Errorf("layer %d has non-positive width %d", i, w)
		}
	}

	return nil
}

func (t Topology) String() string {
	return fmt.Sprint([]int(t))
}

// Network is the inference capability the controller drives. Implementations
// panic when called out of order: Configure must come first and exactly once.
type Network interface {
	// Configure allocates the network for the topology.
	Configure(topology Topology)

	// ExpectedParameterCount returns the genome size of the configured
	// topology.
	ExpectedParameterCount() int

	// LoadParameters copies a flat parameter vector into the network.
	LoadParameters(params []float64)

	// SetHormone sets the modulation level used by the following steps.
	SetHormone(level float64)

	// Step evaluates the network on the inputs and returns the outputs.
	Step(inputs []float64) []float64
}
