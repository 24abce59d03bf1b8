package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Activation kernels. These are not part of the tensor.Backend contract;
// layers discover them through capability assertions so that backends
// without fused activations can still satisfy the core interface.

// Rsqrt computes the reciprocal square root element-wise.
func (c *CPUBackend) Rsqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("rsqrt", t)
}

// GELU applies the Gaussian Error Linear Unit using the exact erf form.
func (c *CPUBackend) GELU(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("gelu", t)
}

// SiLU applies x * sigmoid(x), also known as swish.
func (c *CPUBackend) SiLU(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("silu", t)
}

// Tanh applies the hyperbolic tangent element-wise.
func (c *CPUBackend) Tanh(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("tanh", t)
}

// Sigmoid applies the logistic function element-wise.
func (c *CPUBackend) Sigmoid(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("sigmoid", t)
}

// Softplus applies log(1 + exp(x)) element-wise, with a linear
// approximation above 20 where the exact form overflows float32.
func (c *CPUBackend) Softplus(t *tensor.RawTensor) *tensor.RawTensor {
	return c.activation("softplus", t)
}

func (c *CPUBackend) activation(op string, t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	switch t.DType() {
	case tensor.Float32:
		activationFloat32(c.parallel, op, t.AsFloat32(), out.AsFloat32())
	case tensor.Float64:
		activationFloat64(c.parallel, op, t.AsFloat64(), out.AsFloat64())
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, t.DType()))
	}
	return out
}

func activationFloat32(cfg parallel.Config, op string, x, out []float32) {
	var f func(float32) float32
	switch op {
	case "rsqrt":
		f = func(v float32) float32 { return 1 / math32.Sqrt(v) }
	case "gelu":
		// Exact erf form; erf is evaluated in float64 for accuracy.
		f = func(v float32) float32 {
			return float32(0.5 * float64(v) * (1 + math.Erf(float64(v)/math.Sqrt2)))
		}
	case "silu":
		f = func(v float32) float32 { return v / (1 + math32.Exp(-v)) }
	case "tanh":
		f = math32.Tanh
	case "sigmoid":
		f = func(v float32) float32 { return 1 / (1 + math32.Exp(-v)) }
	case "softplus":
		f = func(v float32) float32 {
			if v > 20 {
				return v
			}
			return float32(math.Log1p(math.Exp(float64(v))))
		}
	default:
		panic(fmt.Sprintf("unknown activation %q", op))
	}
	parallel.For(cfg, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(x[i])
		}
	})
}

func activationFloat64(cfg parallel.Config, op string, x, out []float64) {
	var f func(float64) float64
	switch op {
	case "rsqrt":
		f = func(v float64) float64 { return 1 / math.Sqrt(v) }
	case "gelu":
		f = func(v float64) float64 { return 0.5 * v * (1 + math.Erf(v/math.Sqrt2)) }
	case "silu":
		f = func(v float64) float64 { return v / (1 + math.Exp(-v)) }
	case "tanh":
		f = math.Tanh
	case "sigmoid":
		f = func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	case "softplus":
		f = func(v float64) float64 {
			if v > 20 {
				return v
			}
			return math.Log1p(math.Exp(v))
		}
	default:
		panic(fmt.Sprintf("unknown activation %q", op))
	}
	parallel.For(cfg, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(x[i])
		}
	})
}

// LeakyReLU applies max(x, slope*x) element-wise.
func (c *CPUBackend) LeakyReLU(t *tensor.RawTensor, slope float64) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("leaky_relu: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		x, o := t.AsFloat32(), out.AsFloat32()
		s := float32(slope)
		parallel.For(c.parallel, len(o), func(start, end int) {
			for i := start; i < end; i++ {
				if x[i] >= 0 {
					o[i] = x[i]
				} else {
					o[i] = s * x[i]
				}
			}
		})
	case tensor.Float64:
		x, o := t.AsFloat64(), out.AsFloat64()
		parallel.For(c.parallel, len(o), func(start, end int) {
			for i := start; i < end; i++ {
				if x[i] >= 0 {
					o[i] = x[i]
				} else {
					o[i] = slope * x[i]
				}
			}
		})
	default:
		panic(fmt.Sprintf("leaky_relu: unsupported dtype %s", t.DType()))
	}
	return out
}
