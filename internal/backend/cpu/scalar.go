package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// scalarToFloat64 widens any supported scalar type for kernel dispatch.
// Kernels narrow back to the tensor's dtype.
func scalarToFloat64(scalar any) (float64, error) {
	switch v := scalar.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unsupported scalar type %T", scalar)
	}
}

// AddScalar adds a scalar to every element.
func (c *CPUBackend) AddScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("add_scalar", t, scalar)
}

// SubScalar subtracts a scalar from every element.
func (c *CPUBackend) SubScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("sub_scalar", t, scalar)
}

// MulScalar multiplies every element by a scalar.
func (c *CPUBackend) MulScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("mul_scalar", t, scalar)
}

// DivScalar divides every element by a scalar.
func (c *CPUBackend) DivScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("div_scalar", t, scalar)
}

func (c *CPUBackend) scalarOp(op string, t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s, err := scalarToFloat64(scalar)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	if op == "div_scalar" && s == 0 {
		panic(fmt.Sprintf("%s: division by zero", op))
	}

	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	switch t.DType() {
	case tensor.Float32:
		scalarFloat32(c.parallel, op, t.AsFloat32(), out.AsFloat32(), float32(s))
	case tensor.Float64:
		scalarFloat64(c.parallel, op, t.AsFloat64(), out.AsFloat64(), s)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, t.DType()))
	}
	return out
}

func scalarFloat32(cfg parallel.Config, op string, x, out []float32, s float32) {
	switch op {
	case "add_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] + s
			}
		})
	case "sub_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] - s
			}
		})
	case "mul_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] * s
			}
		})
	case "div_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] / s
			}
		})
	default:
		panic(fmt.Sprintf("unknown scalar op %q", op))
	}
}

func scalarFloat64(cfg parallel.Config, op string, x, out []float64, s float64) {
	switch op {
	case "add_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] + s
			}
		})
	case "sub_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] - s
			}
		})
	case "mul_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] * s
			}
		})
	case "div_scalar":
		parallel.For(cfg, len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = x[i] / s
			}
		})
	default:
		panic(fmt.Sprintf("unknown scalar op %q", op))
	}
}

// Neg negates every element.
func (c *CPUBackend) Neg(t *tensor.RawTensor) *tensor.RawTensor {
	return c.scalarOp("mul_scalar", t, -1.0)
}
