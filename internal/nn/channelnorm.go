package nn

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// ChannelNorm normalizes [batch, channel, time] activations across the
// channel axis independently at every time step, then applies a learned
// per-channel gain and bias.
//
// The kernel works in [batch, time, channel] layout so the reduction runs
// over the trailing axis, and transposes back on the way out.
type ChannelNorm[B tensor.Backend] struct {
	channels int
	eps      float32

	gamma *Parameter[B]
	beta  *Parameter[B]
}

// NewChannelNorm creates a channel normalization layer with gain one and
// bias zero.
func NewChannelNorm[B tensor.Backend](backend B, channels int) *ChannelNorm[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("channelnorm: channels must be positive, got %d", channels))
	}

	gamma := tensor.Ones[float32](backend, tensor.Shape{channels})
	beta := tensor.Zeros[float32](backend, tensor.Shape{channels})

	return &ChannelNorm[B]{
		channels: channels,
		eps:      1e-5,
		gamma:    NewParameter("gamma", gamma),
		beta:     NewParameter("beta", beta),
	}
}

// Forward normalizes x of shape [batch, channel, time].
func (n *ChannelNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("channelnorm: expected [batch, channel, time], got %v", shape))
	}
	if shape[1] != n.channels {
		panic(fmt.Sprintf("channelnorm: expected %d channels, got %d", n.channels, shape[1]))
	}

	xt := x.Transpose(1, 2)
	mean := xt.MeanDim(2, true)
	centered := xt.Sub(mean)
	variance := centered.Mul(centered).MeanDim(2, true)

	var invStd *tensor.Tensor[float32, B]
	if rb, ok := any(x.Backend()).(interface {
		Rsqrt(*tensor.RawTensor) *tensor.RawTensor
	}); ok {
		invStd = tensor.FromRaw[float32](x.Backend(), rb.Rsqrt(variance.AddScalar(n.eps).Raw()))
	} else {
		std := variance.AddScalar(n.eps).Sqrt()
		invStd = tensor.Ones[float32](x.Backend(), std.Shape()).Div(std)
	}

	normalized := centered.Mul(invStd)
	out := normalized.Mul(n.gamma.Tensor()).Add(n.beta.Tensor())
	return out.Transpose(1, 2)
}

// Parameters returns the gain and bias.
func (n *ChannelNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{n.gamma, n.beta}
}

// StateDict returns the layer's named tensors.
func (n *ChannelNorm[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{
		"gamma": n.gamma.Tensor(),
		"beta":  n.beta.Tensor(),
	}
}

// LoadStateDict restores the layer's tensors from a state dict.
func (n *ChannelNorm[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := LoadEntry(state, "gamma", n.gamma); err != nil {
		return err
	}
	return LoadEntry(state, "beta", n.beta)
}
