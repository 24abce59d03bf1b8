package nn

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// LinearNormConfig configures a LinearNorm layer. Zero InitGain means 1;
// bias is on unless NoBias is set.
type LinearNormConfig struct {
	InFeatures  int
	OutFeatures int
	InitGain    float64
	NoBias      bool
}

// LinearNorm is a Xavier-initialized linear projection over the trailing
// feature axis. It accepts [time, features] or [batch, time, features].
type LinearNorm[B tensor.Backend] struct {
	cfg    LinearNormConfig
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewLinearNorm creates the layer with Xavier weights and zero bias.
func NewLinearNorm[B tensor.Backend](backend B, cfg LinearNormConfig) *LinearNorm[B] {
	if cfg.InFeatures <= 0 || cfg.OutFeatures <= 0 {
		panic(fmt.Sprintf("linearnorm: invalid features in=%d out=%d", cfg.InFeatures, cfg.OutFeatures))
	}
	if cfg.InitGain == 0 {
		cfg.InitGain = 1
	}

	weight := tensor.Zeros[float32](backend, tensor.Shape{cfg.InFeatures, cfg.OutFeatures})
	XavierGain(weight, cfg.InitGain)

	l := &LinearNorm[B]{
		cfg:    cfg,
		weight: NewParameter("weight", weight),
	}
	if !cfg.NoBias {
		bias := tensor.Zeros[float32](backend, tensor.Shape{cfg.OutFeatures})
		l.bias = NewParameter("bias", bias)
	}
	return l
}

// Forward projects the trailing axis from InFeatures to OutFeatures.
func (l *LinearNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if shape[len(shape)-1] != l.cfg.InFeatures {
		panic(fmt.Sprintf("linearnorm: expected %d input features, got %v", l.cfg.InFeatures, shape))
	}

	out := x.MatMul(l.weight.Tensor())
	if l.bias != nil {
		out = out.Add(l.bias.Tensor())
	}
	return out
}

// Parameters returns the layer's parameters.
func (l *LinearNorm[B]) Parameters() []*Parameter[B] {
	params := []*Parameter[B]{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

// StateDict returns the layer's named tensors.
func (l *LinearNorm[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	state := map[string]*tensor.Tensor[float32, B]{"weight": l.weight.Tensor()}
	if l.bias != nil {
		state["bias"] = l.bias.Tensor()
	}
	return state
}

// LoadStateDict restores the layer's tensors.
func (l *LinearNorm[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	if err := LoadEntry(state, "weight", l.weight); err != nil {
		return err
	}
	if l.bias != nil {
		return LoadEntry(state, "bias", l.bias)
	}
	return nil
}
