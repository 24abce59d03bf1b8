//go:build windows

package webgpu

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Add performs element-wise addition with broadcasting.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("add", addShader, x, y)
}

// Sub performs element-wise subtraction with broadcasting.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("sub", subShader, x, y)
}

// Mul performs element-wise multiplication with broadcasting.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("mul", mulShader, x, y)
}

// Div performs element-wise division with broadcasting.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binary("div", divShader, x, y)
}

// binary resolves the broadcast shape, packs the operand strides into
// kernel params, and dispatches one thread per output element. The
// stride vectors limit operands to rank 4.
func (b *Backend) binary(op, source string, x, y *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32(op, x)
	requireFloat32(op, y)

	outShape, _, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	if len(outShape) > 4 {
		panic(fmt.Sprintf("%s: rank %d exceeds the kernel limit of 4", op, len(outShape)))
	}

	out := newResult(op, outShape)
	size := out.NumElements()

	params := make([]uint32, 14)
	packStrides(params[0:4], outShape.ComputeStrides())
	packStrides(params[4:8], broadcastStrides(x.Shape(), outShape))
	packStrides(params[8:12], broadcastStrides(y.Shape(), outShape))
	//nolint:gosec // G115: element counts and ranks are small non-negatives.
	params[12] = uint32(size)
	//nolint:gosec // G115: element counts and ranks are small non-negatives.
	params[13] = uint32(len(outShape))

	data, err := b.dispatch(op, source, [][]byte{x.Data(), y.Data()},
		size*4, packUint32(params...), groups1D(size), 1, 1)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	copy(out.Data(), data)
	return out
}

// AddScalar adds a scalar to every element.
func (b *Backend) AddScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.unary("add_scalar", addScalarShader, t, toScalar32("add_scalar", scalar))
}

// SubScalar subtracts a scalar from every element.
func (b *Backend) SubScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.unary("sub_scalar", subScalarShader, t, toScalar32("sub_scalar", scalar))
}

// MulScalar multiplies every element by a scalar.
func (b *Backend) MulScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.unary("mul_scalar", mulScalarShader, t, toScalar32("mul_scalar", scalar))
}

// DivScalar divides every element by a scalar.
func (b *Backend) DivScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toScalar32("div_scalar", scalar)
	if s == 0 {
		panic("div_scalar: division by zero")
	}
	return b.unary("div_scalar", divScalarShader, t, s)
}

// Neg negates every element.
func (b *Backend) Neg(t *tensor.RawTensor) *tensor.RawTensor {
	return b.MulScalar(t, -1.0)
}

// Exp applies the exponential function element-wise.
func (b *Backend) Exp(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("exp", expShader, t, 0)
}

// Log applies the natural logarithm element-wise.
func (b *Backend) Log(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("log", logShader, t, 0)
}

// Sqrt applies the square root element-wise.
func (b *Backend) Sqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("sqrt", sqrtShader, t, 0)
}

// ClampMin clamps every element to be at least min.
func (b *Backend) ClampMin(t *tensor.RawTensor, min any) *tensor.RawTensor {
	return b.unary("clamp_min", clampMinShader, t, toScalar32("clamp_min", min))
}

// Rsqrt computes the reciprocal square root element-wise.
func (b *Backend) Rsqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("rsqrt", rsqrtShader, t, 0)
}

// GELU applies the Gaussian Error Linear Unit in its tanh form.
func (b *Backend) GELU(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("gelu", geluShader, t, 0)
}

// SiLU applies x * sigmoid(x).
func (b *Backend) SiLU(t *tensor.RawTensor) *tensor.RawTensor {
	return b.unary("silu", siluShader, t, 0)
}

// LeakyReLU applies max(x, slope*x) element-wise.
func (b *Backend) LeakyReLU(t *tensor.RawTensor, slope float64) *tensor.RawTensor {
	return b.unary("leaky_relu", leakyReLUShader, t, float32(slope))
}

func (b *Backend) unary(op, source string, t *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	requireFloat32(op, t)

	out := newResult(op, t.Shape())
	n := t.NumElements()
	//nolint:gosec // G115: element counts are non-negative.
	params := packUint32(uint32(n), math.Float32bits(scalar))

	data, err := b.dispatch(op, source, [][]byte{t.Data()}, n*4, params, groups1D(n), 1, 1)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	copy(out.Data(), data)
	return out
}

// MatMul multiplies matrices on the last two dimensions.
//
// Supported operand ranks:
//
//	[m,k] x [k,n]     -> [m,n]
//	[b,m,k] x [k,n]   -> [b,m,n]
//	[b,m,k] x [b,k,n] -> [b,m,n]
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("matmul", x)
	requireFloat32("matmul", y)

	xs, ys := x.Shape(), y.Shape()
	var batch, m, k, n, bStride int
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
		bStride = k * n
		outShape = tensor.Shape{batch, m, n}
	default:
		panic(fmt.Sprintf("matmul: unsupported ranks: %v x %v", xs, ys))
	}

	out := newResult("matmul", outShape)
	//nolint:gosec // G115: matrix dimensions are non-negative.
	params := packUint32(uint32(m), uint32(k), uint32(n), uint32(bStride))

	//nolint:gosec // G115: workgroup counts are non-negative.
	data, err := b.dispatch("matmul", matmulShader, [][]byte{x.Data(), y.Data()},
		batch*m*n*4, params, uint32((n+15)/16), uint32((m+15)/16), uint32(batch))
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}
	copy(out.Data(), data)
	return out
}

// Conv1D convolves input [batch, inCh, time] with kernel
// [outCh, inCh/groups, kernelSize]. Semantics match the cpu backend:
// zero padding on both ends, dilated taps, grouped channels.
func (b *Backend) Conv1D(input, kernel *tensor.RawTensor, stride, padding, dilation, groups int) *tensor.RawTensor {
	requireFloat32("conv1d", input)
	requireFloat32("conv1d", kernel)

	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 3 {
		panic(fmt.Sprintf("conv1d: input must be [batch, channels, time], got %v", is))
	}
	if len(ks) != 3 {
		panic(fmt.Sprintf("conv1d: kernel must be [outCh, inCh/groups, kernelSize], got %v", ks))
	}
	if stride < 1 || dilation < 1 || padding < 0 || groups < 1 {
		panic(fmt.Sprintf("conv1d: invalid hyperparameters stride=%d padding=%d dilation=%d groups=%d",
			stride, padding, dilation, groups))
	}

	batch, inCh, timeIn := is[0], is[1], is[2]
	outCh, kInCh, kSize := ks[0], ks[1], ks[2]

	if inCh%groups != 0 || outCh%groups != 0 {
		panic(fmt.Sprintf("conv1d: groups=%d must divide inCh=%d and outCh=%d", groups, inCh, outCh))
	}
	if kInCh != inCh/groups {
		panic(fmt.Sprintf("conv1d: kernel expects %d input channels per group, input has %d", kInCh, inCh/groups))
	}

	outT := (timeIn+2*padding-dilation*(kSize-1)-1)/stride + 1
	if outT < 1 {
		panic(fmt.Sprintf("conv1d: kernel span exceeds padded input: time=%d padding=%d kernel=%d dilation=%d",
			timeIn, padding, kSize, dilation))
	}

	out := newResult("conv1d", tensor.Shape{batch, outCh, outT})
	//nolint:gosec // G115: convolution hyperparameters are non-negative.
	params := packUint32(uint32(batch), uint32(inCh), uint32(timeIn), uint32(outCh),
		uint32(kSize), uint32(outT), uint32(stride), uint32(padding), uint32(dilation), uint32(groups))

	total := batch * outCh * outT
	data, err := b.dispatch("conv1d", conv1dShader, [][]byte{input.Data(), kernel.Data()},
		total*4, params, groups1D(total), 1, 1)
	if err != nil {
		panic(fmt.Sprintf("conv1d: %v", err))
	}
	copy(out.Data(), data)
	return out
}

// Sum reduces all elements to a single-element tensor of shape [1].
func (b *Backend) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	return b.reduce("sum", t, tensor.Shape{1}, 1, t.NumElements(), 1, false)
}

// SumDim sums along one dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is removed from the shape.
func (b *Backend) SumDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.reduceDim("sum_dim", t, dim, keepDim, false)
}

// MeanDim averages along one dimension.
func (b *Backend) MeanDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.reduceDim("mean_dim", t, dim, keepDim, true)
}

func (b *Backend) reduceDim(op string, t *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: dim %d out of range for shape %v", op, dim, shape))
	}

	outer, dimSize, inner := splitAtDim(shape, dim)

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		outShape = append(outShape, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
		if len(outShape) == 0 {
			outShape = tensor.Shape{1}
		}
	}

	return b.reduce(op, t, outShape, outer, dimSize, inner, mean)
}

// reduce dispatches the shared reduction kernel over an
// [outer, dimSize, inner] view of t.
func (b *Backend) reduce(op string, t *tensor.RawTensor, outShape tensor.Shape, outer, dimSize, inner int, mean bool) *tensor.RawTensor {
	requireFloat32(op, t)

	out := newResult(op, outShape)
	meanFlag := uint32(0)
	if mean {
		meanFlag = 1
	}
	//nolint:gosec // G115: view extents are non-negative.
	params := packUint32(uint32(outer), uint32(dimSize), uint32(inner), meanFlag)

	total := outer * inner
	data, err := b.dispatch("reduce", reduceShader, [][]byte{t.Data()},
		total*4, params, groups1D(total), 1, 1)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	copy(out.Data(), data)
	return out
}

// Embedding gathers rows of weight [vocab, dim] by int32 indices
// [batch, time], producing [batch, time, dim]. Indices are range-checked
// on the host; the kernel cannot surface a panic.
func (b *Backend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("embedding", weight)

	ws, is := weight.Shape(), indices.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("embedding: weight must be [vocab, dim], got %v", ws))
	}
	if len(is) != 2 {
		panic(fmt.Sprintf("embedding: indices must be [batch, time], got %v", is))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	vocab, dim := ws[0], ws[1]
	idx := indices.AsInt32()
	for i, id := range idx {
		if id < 0 || int(id) >= vocab {
			panic(fmt.Sprintf("embedding: index %d at position %d out of range [0, %d)", id, i, vocab))
		}
	}

	out := newResult("embedding", tensor.Shape{is[0], is[1], dim})
	//nolint:gosec // G115: token counts and dims are non-negative.
	params := packUint32(uint32(len(idx)), uint32(dim))

	data, err := b.dispatch("embedding", embeddingShader, [][]byte{weight.Data(), indices.Data()},
		len(idx)*dim*4, params, groups1D(len(idx)), 1, 1)
	if err != nil {
		panic(fmt.Sprintf("embedding: %v", err))
	}
	copy(out.Data(), data)
	return out
}

// newResult allocates a float32 output tensor tagged for this device.
func newResult(op string, shape tensor.Shape) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return out
}

func requireFloat32(op string, t *tensor.RawTensor) {
	if t.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: webgpu computes float32 only, got %s", op, t.DType()))
	}
}

// toScalar32 narrows any supported scalar type for kernel params.
func toScalar32(op string, scalar any) float32 {
	switch v := scalar.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}

// broadcastStrides returns read strides for viewing shape as outShape,
// with 0 on broadcast dimensions.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	strides := shape.ComputeStrides()
	result := make([]int, len(outShape))
	offset := len(outShape) - len(shape)
	for i := range outShape {
		si := i - offset
		if si < 0 || shape[si] == 1 {
			result[i] = 0
		} else {
			result[i] = strides[si]
		}
	}
	return result
}

// packStrides widens stride ints into a fixed u32 vector slot.
func packStrides(dst []uint32, strides []int) {
	for i, s := range strides {
		//nolint:gosec // G115: strides are non-negative.
		dst[i] = uint32(s)
	}
}
