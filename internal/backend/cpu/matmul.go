package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// floatType constrains generic kernels to the floating-point dtypes.
type floatType interface {
	~float32 | ~float64
}

// MatMul multiplies matrices on the last two dimensions.
//
// Supported operand ranks:
//
//	[m,k] x [k,n]     -> [m,n]
//	[b,m,k] x [k,n]   -> [b,m,n]
//	[b,m,k] x [b,k,n] -> [b,m,n]
func (c *CPUBackend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", x.DType(), y.DType()))
	}

	xs, ys := x.Shape(), y.Shape()
	var batch, m, k, n int
	var yBatched bool
	var outShape tensor.Shape

	switch {
	case len(xs) == 2 && len(ys) == 2:
		batch, m, k, n = 1, xs[0], xs[1], ys[1]
		if ys[0] != k {
			panic(fmt.Sprintf("matmul: inner dimensions do not match: %v x %v", xs, ys))
		}
		outShape = tensor.Shape{m, n}
	case len(xs) == 3 && len(ys) == 2:
		batch, m, k, n = xs[0], xs[1], xs[2], ys[1]
		if ys[0] != k {
			panic(fmt.Sprintf("matmul: inner dimensions do not match: %v x %v", xs, ys))
		}
		outShape = tensor.Shape{batch, m, n}
	case len(xs) == 3 && len(ys) == 3:
		batch, m, k, n = xs[0], xs[1], xs[2], ys[2]
		if ys[0] != batch || ys[1] != k {
			panic(fmt.Sprintf("matmul: batched shapes do not match: %v x %v", xs, ys))
		}
		yBatched = true
		outShape = tensor.Shape{batch, m, n}
	default:
		panic(fmt.Sprintf("matmul: unsupported ranks: %v x %v", xs, ys))
	}

	out, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		matmulKernel(c.parallel, x.AsFloat32(), y.AsFloat32(), out.AsFloat32(), batch, m, k, n, yBatched)
	case tensor.Float64:
		matmulKernel(c.parallel, x.AsFloat64(), y.AsFloat64(), out.AsFloat64(), batch, m, k, n, yBatched)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", x.DType()))
	}
	return out
}

// matmulKernel computes out += x*y row by row in i,p,j order, which keeps
// the inner loop streaming over contiguous slices of y and out.
func matmulKernel[T floatType](cfg parallel.Config, x, y, out []T, batch, m, k, n int, yBatched bool) {
	parallel.ForBatch(cfg, batch*m, func(row int) {
		b := row / m
		xRow := x[row*k : row*k+k]
		outRow := out[row*n : row*n+n]
		yOff := 0
		if yBatched {
			yOff = b * k * n
		}
		for p := 0; p < k; p++ {
			xv := xRow[p]
			if xv == 0 {
				continue
			}
			yRow := y[yOff+p*n : yOff+p*n+n]
			for j := range outRow {
				outRow[j] += xv * yRow[j]
			}
		}
	})
}
