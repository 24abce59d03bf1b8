package nn

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

const leakyReLUSlope = 0.1

// ResBlock is the interface shared by waveform residual blocks. The mask
// argument to Forward may be nil.
type ResBlock[B tensor.Backend] interface {
	Forward(x, mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	RemoveWeightNorm()
	Parameters() []*Parameter[B]
}

// wnConv1d is a same-length convolution whose weight is reparameterized
// as g * v/|v|, with the norm taken per output channel. RemoveWeightNorm
// folds the two factors into a plain weight for inference.
type wnConv1d[B tensor.Backend] struct {
	cfg Conv1dConfig

	v      *Parameter[B]
	g      *Parameter[B]
	bias   *Parameter[B]
	folded *Parameter[B]
}

func newWNConv1d[B tensor.Backend](backend B, channels, kernelSize, dilation int) *wnConv1d[B] {
	cfg := Conv1dConfig{
		InChannels:  channels,
		OutChannels: channels,
		KernelSize:  kernelSize,
		Padding:     Padding(kernelSize, dilation),
		Dilation:    dilation,
		Stride:      1,
		Groups:      1,
	}

	v := tensor.Zeros[float32](backend, tensor.Shape{channels, channels, kernelSize})
	fanIn := channels * kernelSize
	bound := 1 / math.Sqrt(float64(fanIn))
	Uniform(v, -bound, bound)

	// g starts at |v| per output channel, so the effective weight equals
	// v at construction.
	g := tensor.Zeros[float32](backend, tensor.Shape{channels})
	vd := v.Data()
	gd := g.Data()
	per := channels * kernelSize
	for oc := 0; oc < channels; oc++ {
		var ss float64
		for j := 0; j < per; j++ {
			val := float64(vd[oc*per+j])
			ss += val * val
		}
		gd[oc] = float32(math.Sqrt(ss))
	}

	bias := tensor.Zeros[float32](backend, tensor.Shape{channels})
	return &wnConv1d[B]{
		cfg:  cfg,
		v:    NewParameter("weight_v", v),
		g:    NewParameter("weight_g", g),
		bias: NewParameter("bias", bias),
	}
}

// effectiveWeight materializes g * v/|v|, or returns the folded weight
// after RemoveWeightNorm.
func (c *wnConv1d[B]) effectiveWeight(backend B) *tensor.Tensor[float32, B] {
	if c.folded != nil {
		return c.folded.Tensor()
	}

	v := c.v.Tensor()
	shape := v.Shape()
	out := shape[0]
	per := shape[1] * shape[2]

	w := tensor.Zeros[float32](backend, shape)
	vd := v.Data()
	gd := c.g.Tensor().Data()
	wd := w.Data()
	for oc := 0; oc < out; oc++ {
		var ss float64
		for j := 0; j < per; j++ {
			val := float64(vd[oc*per+j])
			ss += val * val
		}
		scale := gd[oc] / float32(math.Sqrt(ss))
		for j := 0; j < per; j++ {
			wd[oc*per+j] = vd[oc*per+j] * scale
		}
	}
	return w
}

func (c *wnConv1d[B]) forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	w := c.effectiveWeight(x.Backend())
	out := x.Conv1D(w, c.cfg.Stride, c.cfg.Padding, c.cfg.Dilation, c.cfg.Groups)
	return out.Add(c.bias.Tensor().Reshape(tensor.Shape{c.cfg.OutChannels, 1}))
}

func (c *wnConv1d[B]) removeWeightNorm(backend B) {
	c.folded = NewParameter("weight", c.effectiveWeight(backend))
	c.v = nil
	c.g = nil
}

func (c *wnConv1d[B]) parameters() []*Parameter[B] {
	if c.folded != nil {
		return []*Parameter[B]{c.folded, c.bias}
	}
	return []*Parameter[B]{c.v, c.g, c.bias}
}

func (c *wnConv1d[B]) stateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	for _, p := range c.parameters() {
		state[p.Name()] = p.Tensor()
	}
	return state
}

func (c *wnConv1d[B]) loadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	for _, p := range c.parameters() {
		if err := LoadEntry(state, p.Name(), p); err != nil {
			return err
		}
	}
	return nil
}

// ResBlock1Config configures a ResBlock1. Zero KernelSize means 3; nil
// Dilations means {1, 3, 5}.
type ResBlock1Config struct {
	Channels   int
	KernelSize int
	Dilations  []int
}

// ResBlock1 is a residual stack of weight-normalized convolution pairs.
// Each pair applies a dilated conv then a dilation-1 conv, both preceded
// by LeakyReLU, and adds the result back onto the input.
type ResBlock1[B tensor.Backend] struct {
	backend B
	convs1  []*wnConv1d[B]
	convs2  []*wnConv1d[B]
}

// NewResBlock1 creates the block.
func NewResBlock1[B tensor.Backend](backend B, cfg ResBlock1Config) *ResBlock1[B] {
	if cfg.Channels <= 0 {
		panic(fmt.Sprintf("resblock1: channels must be positive, got %d", cfg.Channels))
	}
	if cfg.KernelSize == 0 {
		cfg.KernelSize = 3
	}
	if cfg.KernelSize%2 == 0 {
		panic(fmt.Sprintf("resblock1: kernel size must be odd, got %d", cfg.KernelSize))
	}
	if cfg.Dilations == nil {
		cfg.Dilations = []int{1, 3, 5}
	}

	r := &ResBlock1[B]{backend: backend}
	for _, d := range cfg.Dilations {
		r.convs1 = append(r.convs1, newWNConv1d(backend, cfg.Channels, cfg.KernelSize, d))
		r.convs2 = append(r.convs2, newWNConv1d(backend, cfg.Channels, cfg.KernelSize, 1))
	}
	return r
}

// Forward runs the block on x [batch, channels, time] with an optional
// [batch, 1, time] mask.
func (r *ResBlock1[B]) Forward(x, mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	for i := range r.convs1 {
		xt := LeakyReLU(x, leakyReLUSlope)
		if mask != nil {
			xt = xt.Mul(mask)
		}
		xt = r.convs1[i].forward(xt)
		xt = LeakyReLU(xt, leakyReLUSlope)
		if mask != nil {
			xt = xt.Mul(mask)
		}
		xt = r.convs2[i].forward(xt)
		x = xt.Add(x)
	}
	if mask != nil {
		x = x.Mul(mask)
	}
	return x
}

// RemoveWeightNorm folds every conv's g and v factors into plain weights.
// Forward outputs are unchanged.
func (r *ResBlock1[B]) RemoveWeightNorm() {
	for _, c := range r.convs1 {
		c.removeWeightNorm(r.backend)
	}
	for _, c := range r.convs2 {
		c.removeWeightNorm(r.backend)
	}
}

// Parameters returns all parameters of the block.
func (r *ResBlock1[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, c := range r.convs1 {
		params = append(params, c.parameters()...)
	}
	for _, c := range r.convs2 {
		params = append(params, c.parameters()...)
	}
	return params
}

// StateDict returns the block's tensors under conv-indexed keys.
func (r *ResBlock1[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	for i, c := range r.convs1 {
		PrefixStateDict(state, fmt.Sprintf("convs1.%d", i), c.stateDict())
	}
	for i, c := range r.convs2 {
		PrefixStateDict(state, fmt.Sprintf("convs2.%d", i), c.stateDict())
	}
	return state
}

// LoadStateDict restores the block's tensors. The keys must match the
// current parameterization: weight_v/weight_g before RemoveWeightNorm,
// weight after.
func (r *ResBlock1[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	for i, c := range r.convs1 {
		if err := c.loadStateDict(SubStateDict(state, fmt.Sprintf("convs1.%d", i))); err != nil {
			return fmt.Errorf("convs1.%d: %w", i, err)
		}
	}
	for i, c := range r.convs2 {
		if err := c.loadStateDict(SubStateDict(state, fmt.Sprintf("convs2.%d", i))); err != nil {
			return fmt.Errorf("convs2.%d: %w", i, err)
		}
	}
	return nil
}

// DSResBlock is a depth-separable residual block: a three-layer DDSConv
// stack without dropout behind the ResBlock interface. It carries no
// weight normalization, so RemoveWeightNorm is a no-op.
type DSResBlock[B tensor.Backend] struct {
	conv *DDSConv[B]
}

// NewDSResBlock creates the block.
func NewDSResBlock[B tensor.Backend](backend B, channels, kernelSize int) *DSResBlock[B] {
	return &DSResBlock[B]{
		conv: NewDDSConv(backend, DDSConvConfig{
			Channels:   channels,
			KernelSize: kernelSize,
			Layers:     3,
		}),
	}
}

// Forward runs the stack; mask may be nil.
func (r *DSResBlock[B]) Forward(x, mask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return r.conv.Forward(x, mask, nil)
}

// RemoveWeightNorm is a no-op; the block has no weight normalization.
func (r *DSResBlock[B]) RemoveWeightNorm() {}

// Parameters returns the underlying stack's parameters.
func (r *DSResBlock[B]) Parameters() []*Parameter[B] {
	return r.conv.Parameters()
}

// StateDict returns the underlying stack's tensors.
func (r *DSResBlock[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return r.conv.StateDict()
}

// LoadStateDict restores the underlying stack's tensors.
func (r *DSResBlock[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	return r.conv.LoadStateDict(state)
}
