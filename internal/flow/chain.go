package flow

import (
	"fmt"
	"strconv"

	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Chain evaluates an ordered sequence of transforms as one bijection.
// It satisfies Transform itself, so chains nest.
type Chain[B tensor.Backend] struct {
	transforms []Transform[B]
}

// NewChain creates a chain over the given transforms, applied in order
// on Forward and in reverse order on Inverse.
func NewChain[B tensor.Backend](transforms ...Transform[B]) *Chain[B] {
	return &Chain[B]{transforms: transforms}
}

// Len returns the number of transforms.
func (c *Chain[B]) Len() int {
	return len(c.transforms)
}

// Forward threads x through every transform in declared order, summing
// the per-example log-determinants.
func (c *Chain[B]) Forward(x, mask, cond *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	total := tensor.Zeros[float32](x.Backend(), tensor.Shape{x.Shape()[0]})
	for _, t := range c.transforms {
		var logdet *tensor.Tensor[float32, B]
		x, logdet = t.Forward(x, mask, cond)
		total = total.Add(logdet)
	}
	return x, total
}

// Inverse walks the sequence backwards with every transform in inverse
// mode.
func (c *Chain[B]) Inverse(y, mask, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	for i := len(c.transforms) - 1; i >= 0; i-- {
		y = c.transforms[i].Inverse(y, mask, cond)
	}
	return y
}

// Parameters returns the parameters of every member transform.
func (c *Chain[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, t := range c.transforms {
		params = append(params, t.Parameters()...)
	}
	return params
}

// StateDict returns every member's tensors under index-prefixed keys.
func (c *Chain[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	for i, t := range c.transforms {
		nn.PrefixStateDict(state, strconv.Itoa(i), t.StateDict())
	}
	return state
}

// LoadStateDict restores every member's tensors.
func (c *Chain[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	for i, t := range c.transforms {
		if err := t.LoadStateDict(nn.SubStateDict(state, strconv.Itoa(i))); err != nil {
			return fmt.Errorf("transform %d: %w", i, err)
		}
	}
	return nil
}
