package nn

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// ActivationFunc maps the net input of a node to its output.
type ActivationFunc func(float64) float64

// Activation names.
const (
	SigmoidName = "sigmoid"
	TanhName    = "tanh"
	LinearName  = "linear"
	ReLUName    = "relu"
)

var activationRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActivationFunc
}{
	m: map[string]ActivationFunc{
		SigmoidName: Sigmoid,
		TanhName:    math.Tanh,
		LinearName:  func(x float64) float64 { return x },
		ReLUName:    func(x float64) float64 { return math.Max(0, x) },
	},
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// RegisterActivation makes fn available under name.
func RegisterActivation(name string, fn ActivationFunc) error {
	if name == "" {
		return fmt.Errorf("activation name is required")
	}
	if fn == nil {
		return fmt.Errorf("activation function is required")
	}

	activationRegistry.mu.Lock()
	defer activationRegistry.mu.Unlock()

	if _, exists := activationRegistry.m[name]; exists {
		return fmt.Errorf("activation already registered: %s", name)
	}
	activationRegistry.m[name] = fn

	return nil
}

// GetActivation looks an activation up by name.
func GetActivation(name string) (ActivationFunc, error) {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	fn, ok := activationRegistry.m[name]
	if !ok {
		return nil, fmt.Errorf("unsupported activation: %s", name)
	}

	return fn, nil
}

// ListActivations returns the sorted registered activation names.
func ListActivations() []string {
	activationRegistry.mu.RLock()
	defer activationRegistry.mu.RUnlock()

	names := make([]string, 0, len(activationRegistry.m))
	for n := range activationRegistry.m {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}
