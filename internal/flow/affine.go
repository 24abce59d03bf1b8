package flow

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// ElementwiseAffine shifts and rescales each channel with learned
// parameters m and logs, both [channels, 1] and zero-initialized, so a
// fresh transform is the identity.
//
// Forward: y = (m + exp(logs) * x) * mask, logdet = Σ logs * mask over
// channel and time; the log-determinant depends only on logs and the
// mask, never on x. Inverse: x = (y - m) * exp(-logs) * mask. The shift
// is subtracted before masking, so padded positions come out exactly
// zero rather than NaN.
type ElementwiseAffine[B tensor.Backend] struct {
	channels int
	m        *nn.Parameter[B]
	logs     *nn.Parameter[B]
}

// NewElementwiseAffine creates the transform with zero shift and zero
// log-scale.
func NewElementwiseAffine[B tensor.Backend](backend B, channels int) *ElementwiseAffine[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("affine: channels must be positive, got %d", channels))
	}
	return &ElementwiseAffine[B]{
		channels: channels,
		m:        nn.NewParameter("m", tensor.Zeros[float32](backend, tensor.Shape{channels, 1})),
		logs:     nn.NewParameter("logs", tensor.Zeros[float32](backend, tensor.Shape{channels, 1})),
	}
}

// Forward applies the affine map.
func (t *ElementwiseAffine[B]) Forward(x, mask, _ *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	mask = fullMask(x, mask)
	y := t.m.Tensor().Add(t.logs.Tensor().Exp().Mul(x)).Mul(mask)
	logdet := sumBatch(t.logs.Tensor().Mul(mask))
	return y, logdet
}

// Inverse undoes the affine map.
func (t *ElementwiseAffine[B]) Inverse(y, mask, _ *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mask = fullMask(y, mask)
	return y.Sub(t.m.Tensor()).Mul(t.logs.Tensor().Neg().Exp()).Mul(mask)
}

// Parameters returns the shift and log-scale.
func (t *ElementwiseAffine[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{t.m, t.logs}
}

// StateDict returns the transform's named tensors.
func (t *ElementwiseAffine[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{
		"m":    t.m.Tensor(),
		"logs": t.logs.Tensor(),
	}
}

// LoadStateDict restores the transform's tensors.
func (t *ElementwiseAffine[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := nn.LoadEntry(state, "m", t.m); err != nil {
		return err
	}
	return nn.LoadEntry(state, "logs", t.logs)
}
