package nn

import "fmt"

// Controller drives a Network for the deployment topology: three sonar
// inputs and two motor outputs.
type Controller struct {
	net      Network
	topology Topology
}

// NewController wraps the network. The network must not be configured yet.
func NewController(net Network) *Controller {
	return &Controller{
		net:      net,
		topology: DeploymentTopology(),
	}
}

// Network returns the wrapped network.
func (c *Controller) Network() Network {
	return c.net
}

// Topology returns the deployment topology.
func (c *Controller) Topology() Topology {
	return c.topology
}

// Configure allocates the wrapped network for the deployment topology.
func (c *Controller) Configure() {
	c.net.Configure(c.topology)
}

// ExpectedParameterCount returns the genome size of the wrapped network.
func (c *Controller) ExpectedParameterCount() int {
	return c.net.ExpectedParameterCount()
}

// LoadParameters hands the genome to the network. The length must match
// ExpectedParameterCount.
func (c *Controller) LoadParameters(params []float64) error {
	if want := c.net.ExpectedParameterCount(); len(params) != want {
		return fmt.Errorf("genome size mismatch: got %d, want %d",
			len(params), want)
	}

	c.net.LoadParameters(params)

	return nil
}

// SetHormone sets the hormone level of the next Step.
func (c *Controller) SetHormone(level float64) {
	c.net.SetHormone(level)
}

// Step evaluates the network on one sonar reading.
func (c *Controller) Step(inputs [NumInputs]float64) [NumOutputs]float64 {
	outs := c.net.Step(inputs[:])
	if len(outs) != NumOutputs {
		panic(fmt.Sprintf("network returned %d outputs, want %d",
			len(outs), NumOutputs))
	}

	return [NumOutputs]float64{outs[0], outs[1]}
}
