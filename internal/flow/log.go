package flow

import (
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

const logFloor = 1e-5

// Log maps x to its natural logarithm elementwise, clamping inputs at
// 1e-5 first so zero or negative values cannot produce -inf.
//
// Forward: y = ln(max(x, 1e-5)) * mask, logdet = -Σ y over channel and
// time. Inverse: x = exp(y) * mask. The transform has no parameters.
type Log[B tensor.Backend] struct{}

// NewLog creates the transform.
func NewLog[B tensor.Backend]() *Log[B] {
	return &Log[B]{}
}

// Forward applies the clamped logarithm.
func (*Log[B]) Forward(x, mask, _ *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	mask = fullMask(x, mask)
	y := x.ClampMin(logFloor).Log().Mul(mask)
	return y, sumBatch(y).Neg()
}

// Inverse exponentiates.
func (*Log[B]) Inverse(y, mask, _ *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mask = fullMask(y, mask)
	return y.Exp().Mul(mask)
}

// Parameters returns nil; the transform is parameter-free.
func (*Log[B]) Parameters() []*nn.Parameter[B] {
	return nil
}

// StateDict returns an empty dict.
func (*Log[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{}
}

// LoadStateDict is a no-op.
func (*Log[B]) LoadStateDict(map[string]*tensor.Tensor[float32, B]) error {
	return nil
}
