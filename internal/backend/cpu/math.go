package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Exp applies the exponential function element-wise.
func (c *CPUBackend) Exp(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("exp", t)
}

// Log applies the natural logarithm element-wise. Non-positive inputs
// follow IEEE semantics (-Inf at zero, NaN below); callers that cannot
// rule those out should clamp first.
func (c *CPUBackend) Log(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("log", t)
}

// Sqrt applies the square root element-wise.
func (c *CPUBackend) Sqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("sqrt", t)
}

func (c *CPUBackend) unary(op string, t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	switch t.DType() {
	case tensor.Float32:
		unaryFloat32(c.parallel, op, t.AsFloat32(), out.AsFloat32())
	case tensor.Float64:
		unaryFloat64(c.parallel, op, t.AsFloat64(), out.AsFloat64())
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, t.DType()))
	}
	return out
}

func unaryFloat32(cfg parallel.Config, op string, x, out []float32) {
	var f func(float32) float32
	switch op {
	case "exp":
		f = math32.Exp
	case "log":
		f = math32.Log
	case "sqrt":
		f = math32.Sqrt
	default:
		panic(fmt.Sprintf("unknown unary op %q", op))
	}
	parallel.For(cfg, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(x[i])
		}
	})
}

func unaryFloat64(cfg parallel.Config, op string, x, out []float64) {
	var f func(float64) float64
	switch op {
	case "exp":
		f = math.Exp
	case "log":
		f = math.Log
	case "sqrt":
		f = math.Sqrt
	default:
		panic(fmt.Sprintf("unknown unary op %q", op))
	}
	parallel.For(cfg, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(x[i])
		}
	})
}

// ClampMin clamps every element to be at least min.
func (c *CPUBackend) ClampMin(t *tensor.RawTensor, min any) *tensor.RawTensor {
	m, err := scalarToFloat64(min)
	if err != nil {
		panic(fmt.Sprintf("clamp_min: %v", err))
	}

	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("clamp_min: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		x, o := t.AsFloat32(), out.AsFloat32()
		lo := float32(m)
		parallel.For(c.parallel, len(o), func(start, end int) {
			for i := start; i < end; i++ {
				if x[i] < lo {
					o[i] = lo
				} else {
					o[i] = x[i]
				}
			}
		})
	case tensor.Float64:
		x, o := t.AsFloat64(), out.AsFloat64()
		parallel.For(c.parallel, len(o), func(start, end int) {
			for i := start; i < end; i++ {
				if x[i] < m {
					o[i] = m
				} else {
					o[i] = x[i]
				}
			}
		})
	default:
		panic(fmt.Sprintf("clamp_min: unsupported dtype %s", t.DType()))
	}
	return out
}
