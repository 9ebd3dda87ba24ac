package nn

import (
	"fmt"
	"log"
)

// GenomeSize returns the number of parameters a HormoneNet needs for the
// topology. Every non-input node carries one weight per node of the previous
// layer, a bias and a hormone modulator.
func GenomeSize(t Topology) int {
	size := 0
	for l := 1; l < len(t); l++ {
		size += t[l] * (t[l-1] + 2)
	}

	return size
}

type layer struct {
	weights [][]float64
	bias    []float64
	mod     []float64
	out     []float64
}

// HormoneNet is a UESMANN-style feedforward network. The hormone level h
// scales the weighted input sum of node j by (1 + h*k_j), where k_j is a
// learned per-node modulator; the bias is not modulated.
//
// The genome is laid out layer by layer and node by node as the node's
// incoming weights, then its bias, then its modulator.
type HormoneNet struct {
	activationName string
	activation     ActivationFunc

	topology Topology
	layers   []layer
	hormone  float64
}

// NewHormoneNet creates an unconfigured network whose nodes use the named
// activation.
func NewHormoneNet(activation string) (*HormoneNet, error) {
	fn, err := GetActivation(activation)
	if err != nil {
		return nil, err
	}

	return &HormoneNet{
		activationName: activation,
		activation:     fn,
	}, nil
}

// Activation returns the name of the activation used by the nodes.
func (n *HormoneNet) Activation() string {
	return n.activationName
}

// Configure allocates the layers of the network. All weights, biases and
// modulators start at zero.
func (n *HormoneNet) Configure(topology Topology) {
	if n.topology != nil {
		log.Panic("network already configured")
	}

	if err := topology.Validate(); err != nil {
		log.Panicf("invalid topology %s: %v", topology, err)
	}

	n.topology = append(Topology(nil), topology...)
	n.layers = make([]layer, len(topology)-1)

	for l := range n.layers {
		width, fanIn := topology[l+1], topology[l]
		n.layers[l] = layer{
			weights: make([][]float64, width),
			bias:    make([]float64, width),
			mod:     make([]float64, width),
			out:     make([]float64, width),
		}

		for j := range n.layers[l].weights {
			n.layers[l].weights[j] = make([]float64, fanIn)
		}
	}
}

// Topology returns the configured topology.
func (n *HormoneNet) Topology() Topology {
	n.mustBeConfigured()
	return append(Topology(nil), n.topology...)
}

// ExpectedParameterCount returns the genome size of the configured topology.
func (n *HormoneNet) ExpectedParameterCount() int {
	n.mustBeConfigured()
	return GenomeSize(n.topology)
}

// LoadParameters copies the genome into the network.
func (n *HormoneNet) LoadParameters(params []float64) {
	n.mustBeConfigured()

	if len(params) != GenomeSize(n.topology) {
		log.Panicf("genome size mismatch: got %d, want %d",
			len(params), GenomeSize(n.topology))
	}

	i := 0
	for l := range n.layers {
		lay := &n.layers[l]
		for j := range lay.weights {
			i += copy(lay.weights[j], params[i:])
			lay.bias[j] = params[i]
			lay.mod[j] = params[i+1]
			i += 2
		}
	}
}

// Parameters returns the genome currently held by the network.
func (n *HormoneNet) Parameters() []float64 {
	n.mustBeConfigured()

	params := make([]float64, 0, GenomeSize(n.topology))
	for _, lay := range n.layers {
		for j := range lay.weights {
			params = append(params, lay.weights[j]...)
			params = append(params, lay.bias[j], lay.mod[j])
		}
	}

	return params
}

// SetHormone sets the modulation level used by the following steps.
func (n *HormoneNet) SetHormone(level float64) {
	n.mustBeConfigured()
	n.hormone = level
}

// Hormone returns the current modulation level.
func (n *HormoneNet) Hormone() float64 {
	return n.hormone
}

// Step propagates the inputs through the network and returns a fresh slice
// holding the outputs.
func (n *HormoneNet) Step(inputs []float64) []float64 {
	n.mustBeConfigured()

	if len(inputs) != n.topology.Inputs() {
		log.Panicf("input size mismatch: got %d, want %d",
			len(inputs), n.topology.Inputs())
	}

	x := inputs
	for l := range n.layers {
		lay := &n.layers[l]
		for j, w := range lay.weights {
			sum := 0.0
			for i, xi := range x {
				sum += w[i] * xi
			}

			lay.out[j] = n.activation((1+n.hormone*lay.mod[j])*sum + lay.bias[j])
		}
		x = lay.out
	}

	return append([]float64(nil), x...)
}

func (n *HormoneNet) mustBeConfigured() {
	if n.topology == nil {
		log.Panic("network used before Configure")
	}
}

// String describes the network.
func (n *HormoneNet) String() string {
	return fmt.Sprintf("HormoneNet%s/%s", n.topology, n.activationName)
}
