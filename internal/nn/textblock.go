package nn

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TextResidualBlock refines text-encoder activations with repeated
// depth-separable convolution units, each followed by SiLU and channel
// normalization, under a single outer residual connection.
type TextResidualBlock[B tensor.Backend] struct {
	convs []*DDSConv[B]
	norms []*ChannelNorm[B]
}

// NewTextResidualBlock creates a block with the given number of
// DDSConv->SiLU->ChannelNorm units.
func NewTextResidualBlock[B tensor.Backend](backend B, channels, kernelSize, units int) *TextResidualBlock[B] {
	if units <= 0 {
		panic(fmt.Sprintf("textblock: units must be positive, got %d", units))
	}

	b := &TextResidualBlock[B]{}
	for i := 0; i < units; i++ {
		b.convs = append(b.convs, NewDDSConv(backend, DDSConvConfig{
			Channels:   channels,
			KernelSize: kernelSize,
			Layers:     3,
		}))
		b.norms = append(b.norms, NewChannelNorm(backend, channels))
	}
	return b
}

// Forward runs the units on x [batch, channels, time] and adds the input
// back once at the end. mask may be nil.
func (b *TextResidualBlock[B]) Forward(x, mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	h := x
	for i := range b.convs {
		h = b.convs[i].Forward(h, mask, nil)
		h = SiLU(h)
		h = b.norms[i].Forward(h)
	}
	out := x.Add(h)
	if mask != nil {
		out = out.Mul(mask)
	}
	return out
}

// Parameters returns all parameters of the block.
func (b *TextResidualBlock[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for i := range b.convs {
		params = append(params, b.convs[i].Parameters()...)
		params = append(params, b.norms[i].Parameters()...)
	}
	return params
}

// StateDict returns the block's tensors under unit-indexed keys.
func (b *TextResidualBlock[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	for i := range b.convs {
		PrefixStateDict(state, fmt.Sprintf("convs.%d", i), b.convs[i].StateDict())
		PrefixStateDict(state, fmt.Sprintf("norms.%d", i), b.norms[i].StateDict())
	}
	return state
}

// LoadStateDict restores the block's tensors.
func (b *TextResidualBlock[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	for i := range b.convs {
		if err := b.convs[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("convs.%d", i))); err != nil {
			return fmt.Errorf("convs.%d: %w", i, err)
		}
		if err := b.norms[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("norms.%d", i))); err != nil {
			return fmt.Errorf("norms.%d: %w", i, err)
		}
	}
	return nil
}
