package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (c *CPUBackend) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(tensor.Shape{1}, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range t.AsFloat32() {
			sum += v
		}
		out.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range t.AsFloat64() {
			sum += v
		}
		out.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", t.DType()))
	}
	return out
}

// SumDim sums along one dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is removed from the shape.
func (c *CPUBackend) SumDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("sum_dim", t, dim, keepDim)
}

// MeanDim averages along one dimension.
func (c *CPUBackend) MeanDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("mean_dim", t, dim, keepDim)
}

func (c *CPUBackend) reduceDim(op string, t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: dim %d out of range for shape %v", op, dim, shape))
	}

	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	dimSize := shape[dim]
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}

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

	out, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	mean := op == "mean_dim"
	switch t.DType() {
	case tensor.Float32:
		reduceDimKernel(c.parallel, t.AsFloat32(), out.AsFloat32(), outer, dimSize, inner, mean)
	case tensor.Float64:
		reduceDimKernel(c.parallel, t.AsFloat64(), out.AsFloat64(), outer, dimSize, inner, mean)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, t.DType()))
	}
	return out
}

// reduceDimKernel views the input as [outer, dimSize, inner] and collapses
// the middle axis. Parallelism is over outer blocks, keeping writes disjoint.
func reduceDimKernel[T floatType](cfg parallel.Config, in, out []T, outer, dimSize, inner int, mean bool) {
	parallel.ForBatch(cfg, outer, func(o int) {
		outBase := o * inner
		for d := 0; d < dimSize; d++ {
			inBase := (o*dimSize + d) * inner
			for i := 0; i < inner; i++ {
				out[outBase+i] += in[inBase+i]
			}
		}
		if mean {
			inv := 1 / T(dimSize)
			for i := 0; i < inner; i++ {
				out[outBase+i] *= inv
			}
		}
	})
}
