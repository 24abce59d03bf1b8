package flow

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/spline"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// ConvFlowConfig configures a ConvFlow. InChannels must be even. Zero
// NumBins means 10 and zero TailBound means 5.
type ConvFlowConfig struct {
	InChannels     int
	FilterChannels int
	KernelSize     int
	Layers         int
	NumBins        int
	TailBound      float64
}

// ConvFlow is a coupling transform: the input is split in half along the
// channel axis, the first half passes through untouched, and the second
// half goes through a monotone rational-quadratic spline whose bin
// parameters are predicted from the first half by a 1x1 conv -> DDSConv
// -> 1x1 conv head.
//
// The projection conv is zero-initialized, so a fresh transform starts
// near the identity. The head emits half*(3*NumBins-1) values per time
// step: NumBins widths, NumBins heights, and NumBins-1 interior
// derivatives per transformed channel. Widths and heights are scaled by
// 1/sqrt(FilterChannels) before entering the spline.
type ConvFlow[B tensor.Backend] struct {
	cfg  ConvFlowConfig
	half int

	pre   *nn.Conv1d[B]
	convs *nn.DDSConv[B]
	proj  *nn.Conv1d[B]
}

// NewConvFlow creates the transform.
func NewConvFlow[B tensor.Backend](backend B, cfg ConvFlowConfig) *ConvFlow[B] {
	if cfg.InChannels <= 0 || cfg.InChannels%2 != 0 {
		panic(fmt.Sprintf("convflow: in channels must be positive and even, got %d", cfg.InChannels))
	}
	if cfg.FilterChannels <= 0 {
		panic(fmt.Sprintf("convflow: filter channels must be positive, got %d", cfg.FilterChannels))
	}
	if cfg.NumBins == 0 {
		cfg.NumBins = 10
	}
	if cfg.TailBound == 0 {
		cfg.TailBound = 5
	}

	half := cfg.InChannels / 2
	f := &ConvFlow[B]{
		cfg:  cfg,
		half: half,
		pre: nn.NewConv1d(backend, nn.Conv1dConfig{
			InChannels:  half,
			OutChannels: cfg.FilterChannels,
			KernelSize:  1,
		}),
		convs: nn.NewDDSConv(backend, nn.DDSConvConfig{
			Channels:   cfg.FilterChannels,
			KernelSize: cfg.KernelSize,
			Layers:     cfg.Layers,
		}),
		proj: nn.NewConv1d(backend, nn.Conv1dConfig{
			InChannels:  cfg.FilterChannels,
			OutChannels: half * (3*cfg.NumBins - 1),
			KernelSize:  1,
		}),
	}

	// Fresh transforms start near the identity: the spline parameter
	// head emits zeros. The bias is zero from construction.
	nn.Zeros(f.proj.Weight().Tensor())
	return f
}

// Forward transforms the second channel half through the spline.
func (f *ConvFlow[B]) Forward(x, mask, cond *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	mask = fullMask(x, mask)
	x0, x1 := f.split(x)

	params := f.predict(x0, mask, cond)
	y1, logabsdet := f.applySpline(x1, params, false)

	y := tensor.Cat([]*tensor.Tensor[float32, B]{x0, y1}, 1).Mul(mask)
	logdet := sumBatch(logabsdet.Mul(mask))
	return y, logdet
}

// Inverse runs the spline in inverse mode; the passthrough half supplies
// the same parameters it produced during Forward.
func (f *ConvFlow[B]) Inverse(y, mask, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mask = fullMask(y, mask)
	y0, y1 := f.split(y)

	params := f.predict(y0, mask, cond)
	x1, _ := f.applySpline(y1, params, true)

	return tensor.Cat([]*tensor.Tensor[float32, B]{y0, x1}, 1).Mul(mask)
}

// split halves x along the channel axis.
func (f *ConvFlow[B]) split(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	if got := x.Shape()[1]; got != f.cfg.InChannels {
		panic(fmt.Sprintf("convflow: expected %d channels, got %d", f.cfg.InChannels, got))
	}
	halves := x.Chunk(2, 1)
	return halves[0], halves[1]
}

// predict runs the parameter head on the passthrough half and lays the
// spline parameters out as [batch, half, time, 3*NumBins-1], so each
// transformed element owns one contiguous parameter row.
func (f *ConvFlow[B]) predict(x0, mask, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	h := f.pre.Forward(x0)
	h = f.convs.Forward(h, mask, cond)
	h = f.proj.Forward(h).Mul(mask)

	shape := x0.Shape()
	h = h.Reshape(tensor.Shape{shape[0], f.half, 3*f.cfg.NumBins - 1, shape[2]})
	return h.Transpose(0, 1, 3, 2)
}

// applySpline evaluates the spline elementwise on x1 [batch, half, time]
// with params [batch, half, time, 3*NumBins-1]. It returns the mapped
// tensor and the per-element log-absolute-derivative.
func (f *ConvFlow[B]) applySpline(x1, params *tensor.Tensor[float32, B], inverse bool) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	numBins := f.cfg.NumBins
	opts := spline.DefaultOptions()
	opts.TailBound = float32(f.cfg.TailBound)
	scale := float32(1 / math.Sqrt(float64(f.cfg.FilterChannels)))

	out := tensor.Zeros[float32](x1.Backend(), x1.Shape())
	lad := tensor.Zeros[float32](x1.Backend(), x1.Shape())

	in := x1.Data()
	pd := params.Data()
	outData := out.Data()
	ladData := lad.Data()

	stride := 3*numBins - 1
	widths := make([]float32, numBins)
	heights := make([]float32, numBins)
	derivs := make([]float32, numBins-1)
	for i, v := range in {
		row := pd[i*stride : (i+1)*stride]
		for j := 0; j < numBins; j++ {
			widths[j] = row[j] * scale
			heights[j] = row[numBins+j] * scale
		}
		copy(derivs, row[2*numBins:])
		outData[i], ladData[i] = spline.Transform(v, widths, heights, derivs, inverse, opts)
	}
	return out, lad
}

// Parameters returns the head's parameters.
func (f *ConvFlow[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, f.pre.Parameters()...)
	params = append(params, f.convs.Parameters()...)
	params = append(params, f.proj.Parameters()...)
	return params
}

// StateDict returns the transform's tensors under head-prefixed keys.
func (f *ConvFlow[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := make(map[string]*tensor.Tensor[float32, B])
	nn.PrefixStateDict(state, "pre", f.pre.StateDict())
	nn.PrefixStateDict(state, "convs", f.convs.StateDict())
	nn.PrefixStateDict(state, "proj", f.proj.StateDict())
	return state
}

// LoadStateDict restores the transform's tensors.
func (f *ConvFlow[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := f.pre.LoadStateDict(nn.SubStateDict(state, "pre")); err != nil {
		return fmt.Errorf("pre: %w", err)
	}
	if err := f.convs.LoadStateDict(nn.SubStateDict(state, "convs")); err != nil {
		return fmt.Errorf("convs: %w", err)
	}
	if err := f.proj.LoadStateDict(nn.SubStateDict(state, "proj")); err != nil {
		return fmt.Errorf("proj: %w", err)
	}
	return nil
}
