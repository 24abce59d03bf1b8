package nn

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// DDSConvConfig configures a dilated depth-separable convolution stack.
type DDSConvConfig struct {
	Channels   int
	KernelSize int
	Layers     int
	Dropout    float32
}

// DDSConv is a stack of depth-separable convolution layers with
// exponentially growing dilation: layer i uses dilation kernelSize^i with
// symmetric padding, so sequence length is preserved throughout.
//
// Each layer runs depthwise conv -> ChannelNorm -> GELU -> pointwise
// conv -> ChannelNorm -> GELU -> dropout and adds the result back onto
// its input. An optional conditioning tensor is added once before the
// first layer.
type DDSConv[B tensor.Backend] struct {
	cfg DDSConvConfig

	sepConvs   []*Conv1d[B]
	pointConvs []*Conv1d[B]
	norms1     []*ChannelNorm[B]
	norms2     []*ChannelNorm[B]
	drop       *Dropout[B]
}

// NewDDSConv creates the stack. The kernel size must be odd so dilated
// layers can keep the sequence length.
func NewDDSConv[B tensor.Backend](backend B, cfg DDSConvConfig) *DDSConv[B] {
	if cfg.Channels <= 0 || cfg.Layers <= 0 {
		panic(fmt.Sprintf("ddsconv: invalid config channels=%d layers=%d", cfg.Channels, cfg.Layers))
	}
	if cfg.KernelSize <= 0 || cfg.KernelSize%2 == 0 {
		panic(fmt.Sprintf("ddsconv: kernel size must be odd and positive, got %d", cfg.KernelSize))
	}

	d := &DDSConv[B]{
		cfg:  cfg,
		drop: NewDropout[B](cfg.Dropout),
	}

	dilation := 1
	for i := 0; i < cfg.Layers; i++ {
		padding := Padding(cfg.KernelSize, dilation)
		d.sepConvs = append(d.sepConvs, NewConv1d(backend, Conv1dConfig{
			InChannels:  cfg.Channels,
			OutChannels: cfg.Channels,
			KernelSize:  cfg.KernelSize,
			Padding:     padding,
			Dilation:    dilation,
			Groups:      cfg.Channels,
		}))
		d.pointConvs = append(d.pointConvs, NewConv1d(backend, Conv1dConfig{
			InChannels:  cfg.Channels,
			OutChannels: cfg.Channels,
			KernelSize:  1,
		}))
		d.norms1 = append(d.norms1, NewChannelNorm(backend, cfg.Channels))
		d.norms2 = append(d.norms2, NewChannelNorm(backend, cfg.Channels))
		dilation *= cfg.KernelSize
	}
	return d
}

// Forward runs the stack on x [batch, channels, time]. mask is an
// optional [batch, 1, time] zero/one tensor; cond is an optional
// conditioning tensor added to x before the first layer. Either may be
// nil.
func (d *DDSConv[B]) Forward(x, mask, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if cond != nil {
		x = x.Add(cond)
	}
	for i := range d.sepConvs {
		y := x
		if mask != nil {
			y = x.Mul(mask)
		}
		y = d.sepConvs[i].Forward(y)
		y = d.norms1[i].Forward(y)
		y = GELU(y)
		y = d.pointConvs[i].Forward(y)
		y = d.norms2[i].Forward(y)
		y = GELU(y)
		y = d.drop.Forward(y)
		x = x.Add(y)
	}
	if mask != nil {
		x = x.Mul(mask)
	}
	return x
}

// SetTraining toggles dropout between training and inference behavior.
func (d *DDSConv[B]) SetTraining(training bool) {
	d.drop.Training = training
}

// Parameters returns all parameters of the stack.
func (d *DDSConv[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for i := range d.sepConvs {
		params = append(params, d.sepConvs[i].Parameters()...)
		params = append(params, d.pointConvs[i].Parameters()...)
		params = append(params, d.norms1[i].Parameters()...)
		params = append(params, d.norms2[i].Parameters()...)
	}
	return params
}

// StateDict returns the stack's tensors under layer-indexed keys.
func (d *DDSConv[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	for i := range d.sepConvs {
		PrefixStateDict(state, fmt.Sprintf("sep_convs.%d", i), d.sepConvs[i].StateDict())
		PrefixStateDict(state, fmt.Sprintf("point_convs.%d", i), d.pointConvs[i].StateDict())
		PrefixStateDict(state, fmt.Sprintf("norms_1.%d", i), d.norms1[i].StateDict())
		PrefixStateDict(state, fmt.Sprintf("norms_2.%d", i), d.norms2[i].StateDict())
	}
	return state
}

// LoadStateDict restores the stack's tensors.
func (d *DDSConv[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	for i := range d.sepConvs {
		if err := d.sepConvs[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("sep_convs.%d", i))); err != nil {
			return fmt.Errorf("sep_convs.%d: %w", i, err)
		}
		if err := d.pointConvs[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("point_convs.%d", i))); err != nil {
			return fmt.Errorf("point_convs.%d: %w", i, err)
		}
		if err := d.norms1[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("norms_1.%d", i))); err != nil {
			return fmt.Errorf("norms_1.%d: %w", i, err)
		}
		if err := d.norms2[i].LoadStateDict(SubStateDict(state, fmt.Sprintf("norms_2.%d", i))); err != nil {
			return fmt.Errorf("norms_2.%d: %w", i, err)
		}
	}
	return nil
}
