package nn

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Parameter is a named, learnable tensor owned by a layer.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter wraps a tensor as a named parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter's local name, e.g. "weight".
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter's current value.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Load replaces the parameter's value after validating shape and dtype.
func (p *Parameter[B]) Load(t *tensor.Tensor[float32, B]) error {
	if !t.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("parameter %q: shape mismatch: have %v, loading %v",
			p.name, p.tensor.Shape(), t.Shape())
	}
	if t.DType() != p.tensor.DType() {
		return fmt.Errorf("parameter %q: dtype mismatch: have %s, loading %s",
			p.name, p.tensor.DType(), t.DType())
	}
	p.tensor = t
	return nil
}

// LoadEntry fetches a named tensor from a state dict into a parameter,
// wrapping missing keys and shape mismatches with the full key for context.
func LoadEntry[B tensor.Backend](state map[string]*tensor.Tensor[float32, B], key string, p *Parameter[B]) error {
	t, ok := state[key]
	if !ok {
		return fmt.Errorf("state dict missing key %q", key)
	}
	if err := p.Load(t); err != nil {
		return fmt.Errorf("loading %q: %w", key, err)
	}
	return nil
}

// PrefixStateDict merges a child state dict into dst under a dotted prefix.
func PrefixStateDict[B tensor.Backend](dst map[string]*tensor.Tensor[float32, B], prefix string, src map[string]*tensor.Tensor[float32, B]) {
	for k, v := range src {
		dst[prefix+"."+k] = v
	}
}

// SubStateDict extracts the entries under a dotted prefix, stripping it.
func SubStateDict[B tensor.Backend](state map[string]*tensor.Tensor[float32, B], prefix string) map[string]*tensor.Tensor[float32, B] {
	out := make(map[string]*tensor.Tensor[float32, B])
	p := prefix + "."
	for k, v := range state {
		if len(k) > len(p) && k[:len(p)] == p {
			out[k[len(p):]] = v
		}
	}
	return out
}
