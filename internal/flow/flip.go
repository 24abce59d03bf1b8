package flow

import (
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Flip reverses the channel axis. It is its own inverse, permutes
// values without scaling them, and so has an identically zero
// log-determinant. Mask and conditioning are ignored; a permutation
// leaves padded positions padded.
type Flip[B tensor.Backend] struct{}

// NewFlip creates the transform.
func NewFlip[B tensor.Backend]() *Flip[B] {
	return &Flip[B]{}
}

// Forward reverses the channels.
func (*Flip[B]) Forward(x, _, _ *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	y := x.Flip(1)
	logdet := tensor.Zeros[float32](x.Backend(), tensor.Shape{x.Shape()[0]})
	return y, logdet
}

// Inverse reverses the channels again.
func (*Flip[B]) Inverse(y, _, _ *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return y.Flip(1)
}

// Parameters returns nil; the transform is parameter-free.
func (*Flip[B]) Parameters() []*nn.Parameter[B] {
	return nil
}

// StateDict returns an empty dict.
func (*Flip[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{}
}

// LoadStateDict is a no-op.
func (*Flip[B]) LoadStateDict(map[string]*tensor.Tensor[float32, B]) error {
	return nil
}
