// Package flow implements invertible normalizing-flow transforms over
// [batch, channel, time] tensors.
//
// Every transform maps x to y of the same shape and carries an exact
// algebraic inverse. Forward additionally returns the per-example
// log-determinant of the Jacobian, the quantity a density model
// accumulates under change of variables. Inverse returns only the
// reconstruction; inversion is exact, so no determinant bookkeeping is
// needed in that direction. Transforms compose through Chain, which
// threads tensors in declared order, sums log-determinants, and inverts
// by walking the sequence backwards.
package flow

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Transform is a bijection over [batch, channel, time] tensors.
//
// mask is an optional [batch, 1, time] zero/one tensor marking valid
// time steps; cond is an optional conditioning tensor. Either may be
// nil. Transforms that ignore conditioning accept and discard it, so a
// Chain can pass one conditioning tensor to every member.
type Transform[B tensor.Backend] interface {
	// Forward maps x to y and returns the [batch] log-determinant of
	// the Jacobian.
	Forward(x, mask, cond *tensor.Tensor[float32, B]) (y, logdet *tensor.Tensor[float32, B])

	// Inverse reconstructs x from y.
	Inverse(y, mask, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the transform's learnable tensors.
	Parameters() []*nn.Parameter[B]

	// StateDict returns the transform's named tensors for checkpointing.
	StateDict() map[string]*tensor.Tensor[float32, B]

	// LoadStateDict restores the transform's tensors.
	LoadStateDict(map[string]*tensor.Tensor[float32, B]) error
}

// fullMask validates that x is rank 3 and substitutes an all-ones
// [batch, 1, time] mask when the caller passed nil.
func fullMask[B tensor.Backend](x, mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("flow: expected [batch, channel, time], got %v", shape))
	}
	if mask != nil {
		return mask
	}
	return tensor.Ones[float32](x.Backend(), tensor.Shape{shape[0], 1, shape[2]})
}

// sumBatch reduces [batch, channel, time] to a [batch] per-example sum.
func sumBatch[B tensor.Backend](t *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return t.SumDim(2, false).SumDim(1, false)
}
