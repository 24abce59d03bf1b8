package nn

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Conv1dConfig configures a Conv1d layer. Zero values for Stride,
// Dilation and Groups mean 1; bias is on unless NoBias is set.
type Conv1dConfig struct {
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int
	Padding     int
	Dilation    int
	Groups      int
	NoBias      bool
}

// Conv1d is a 1-D convolution over [batch, channel, time] tensors.
type Conv1d[B tensor.Backend] struct {
	cfg    Conv1dConfig
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewConv1d creates a convolution layer. Weights use the uniform fan-in
// default init; bias starts at zero.
func NewConv1d[B tensor.Backend](backend B, cfg Conv1dConfig) *Conv1d[B] {
	if cfg.Stride == 0 {
		cfg.Stride = 1
	}
	if cfg.Dilation == 0 {
		cfg.Dilation = 1
	}
	if cfg.Groups == 0 {
		cfg.Groups = 1
	}

	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 || cfg.KernelSize <= 0 {
		panic(fmt.Sprintf("conv1d: invalid config in=%d out=%d kernel=%d",
			cfg.InChannels, cfg.OutChannels, cfg.KernelSize))
	}
	if cfg.InChannels%cfg.Groups != 0 || cfg.OutChannels%cfg.Groups != 0 {
		panic(fmt.Sprintf("conv1d: groups=%d must divide in=%d and out=%d",
			cfg.Groups, cfg.InChannels, cfg.OutChannels))
	}

	weight := tensor.Zeros[float32](backend, tensor.Shape{
		cfg.OutChannels, cfg.InChannels / cfg.Groups, cfg.KernelSize,
	})
	fanIn := (cfg.InChannels / cfg.Groups) * cfg.KernelSize
	bound := 1 / math.Sqrt(float64(fanIn))
	Uniform(weight, -bound, bound)

	c := &Conv1d[B]{
		cfg:    cfg,
		weight: NewParameter("weight", weight),
	}
	if !cfg.NoBias {
		bias := tensor.Zeros[float32](backend, tensor.Shape{cfg.OutChannels})
		c.bias = NewParameter("bias", bias)
	}
	return c
}

// Forward convolves x of shape [batch, inChannels, time].
func (c *Conv1d[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x.Conv1D(c.weight.Tensor(), c.cfg.Stride, c.cfg.Padding, c.cfg.Dilation, c.cfg.Groups)
	if c.bias != nil {
		out = out.Add(c.bias.Tensor().Reshape(tensor.Shape{c.cfg.OutChannels, 1}))
	}
	return out
}

// Weight returns the weight parameter.
func (c *Conv1d[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter, or nil when the layer has none.
func (c *Conv1d[B]) Bias() *Parameter[B] {
	return c.bias
}

// Parameters returns the layer's parameters.
func (c *Conv1d[B]) Parameters() []*Parameter[B] {
	params := []*Parameter[B]{c.weight}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}

// StateDict returns the layer's named tensors.
func (c *Conv1d[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := map[string]*tensor.Tensor[float32, B]{"weight": c.weight.Tensor()}
	if c.bias != nil {
		state["bias"] = c.bias.Tensor()
	}
	return state
}

// LoadStateDict restores the layer's tensors.
func (c *Conv1d[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := LoadEntry(state, "weight", c.weight); err != nil {
		return err
	}
	if c.bias != nil {
		return LoadEntry(state, "bias", c.bias)
	}
	return nil
}

// ConvNormConfig configures a ConvNorm layer. Zero Stride and Dilation
// mean 1; zero InitGain means 1.
type ConvNormConfig struct {
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int
	Dilation    int

	// InitGain scales the Xavier init bound, e.g. sqrt(2) before ReLU.
	InitGain float64

	// Transpose swaps the last two axes before and after the convolution,
	// for callers carrying activations in [batch, time, channel] layout.
	Transpose bool

	NoBias bool
}

// ConvNorm is a same-length 1-D convolution with gain-aware Xavier
// initialization. The kernel size must be odd so symmetric padding can
// hold the sequence length.
type ConvNorm[B tensor.Backend] struct {
	cfg  ConvNormConfig
	conv *Conv1d[B]
}

// NewConvNorm creates the layer.
func NewConvNorm[B tensor.Backend](backend B, cfg ConvNormConfig) *ConvNorm[B] {
	if cfg.KernelSize%2 == 0 {
		panic(fmt.Sprintf("convnorm: kernel size must be odd for same-length padding, got %d", cfg.KernelSize))
	}
	if cfg.Dilation == 0 {
		cfg.Dilation = 1
	}
	if cfg.InitGain == 0 {
		cfg.InitGain = 1
	}

	conv := NewConv1d(backend, Conv1dConfig{
		InChannels:  cfg.InChannels,
		OutChannels: cfg.OutChannels,
		KernelSize:  cfg.KernelSize,
		Stride:      cfg.Stride,
		Padding:     Padding(cfg.KernelSize, cfg.Dilation),
		Dilation:    cfg.Dilation,
		NoBias:      cfg.NoBias,
	})
	XavierGain(conv.Weight().Tensor(), cfg.InitGain)
	if b := conv.Bias(); b != nil {
		Zeros(b.Tensor())
	}

	return &ConvNorm[B]{cfg: cfg, conv: conv}
}

// Forward applies the convolution, transposing around it when configured.
func (c *ConvNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if c.cfg.Transpose {
		x = x.T()
	}
	out := c.conv.Forward(x)
	if c.cfg.Transpose {
		out = out.T()
	}
	return out
}

// Parameters returns the wrapped convolution's parameters.
func (c *ConvNorm[B]) Parameters() []*Parameter[B] {
	return c.conv.Parameters()
}

// StateDict returns the wrapped convolution's named tensors.
func (c *ConvNorm[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return c.conv.StateDict()
}

// LoadStateDict restores the wrapped convolution's tensors.
func (c *ConvNorm[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	return c.conv.LoadStateDict(state)
}
