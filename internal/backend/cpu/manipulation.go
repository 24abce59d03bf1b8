package cpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/parallel"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// splitAtDim factors a shape into [outer, dimSize, inner] around dim.
func splitAtDim(shape tensor.Shape, dim int) (outer, dimSize, inner int) {
	outer = 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	dimSize = shape[dim]
	inner = 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	return outer, dimSize, inner
}

// Transpose permutes the tensor's dimensions and materializes the result
// in contiguous memory. With no axes the dimension order is reversed;
// with exactly two axes that pair is swapped; with rank axes a full
// permutation is applied.
func (c *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	rank := len(shape)

	perm := make([]int, rank)
	switch len(axes) {
	case 0:
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	case 2:
		for i := range perm {
			perm[i] = i
		}
		a, b := axes[0], axes[1]
		if a < 0 || a >= rank || b < 0 || b >= rank {
			panic(fmt.Sprintf("transpose: axes (%d, %d) out of range for shape %v", a, b, shape))
		}
		perm[a], perm[b] = perm[b], perm[a]
	case rank:
		seen := make([]bool, rank)
		for i, p := range axes {
			if p < 0 || p >= rank || seen[p] {
				panic(fmt.Sprintf("transpose: axes %v is not a permutation of shape %v", axes, shape))
			}
			seen[p] = true
			perm[i] = p
		}
	default:
		panic(fmt.Sprintf("transpose: got %d axes for rank-%d tensor", len(axes), rank))
	}

	outShape := make(tensor.Shape, rank)
	for i, p := range perm {
		outShape[i] = shape[p]
	}

	out, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	outStrides := outShape.ComputeStrides()
	inStrides := shape.ComputeStrides()
	permStrides := make([]int, rank)
	for i, p := range perm {
		permStrides[i] = inStrides[p]
	}

	switch t.DType() {
	case tensor.Float32:
		gatherKernel(c.parallel, t.AsFloat32(), out.AsFloat32(), outStrides, permStrides)
	case tensor.Float64:
		gatherKernel(c.parallel, t.AsFloat64(), out.AsFloat64(), outStrides, permStrides)
	case tensor.Int32:
		gatherKernel(c.parallel, t.AsInt32(), out.AsInt32(), outStrides, permStrides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return out
}

// gatherKernel copies in[map(i)] to out[i] for an arbitrary stride remap.
func gatherKernel[T tensor.DType](cfg parallel.Config, in, out []T, outStrides, inStrides []int) {
	parallel.For(cfg, len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = in[computeFlatIndex(i, outStrides, inStrides)]
		}
	})
}

// Cat concatenates tensors along dim. All inputs must agree on dtype and
// on every dimension except dim.
func (c *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors to concatenate")
	}
	first := tensors[0]
	rank := len(first.Shape())
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("cat: dim %d out of range for shape %v", dim, first.Shape()))
	}

	totalDim := 0
	for _, t := range tensors {
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch: %s vs %s", first.DType(), t.DType()))
		}
		s := t.Shape()
		if len(s) != rank {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", first.Shape(), s))
		}
		for i := range s {
			if i != dim && s[i] != first.Shape()[i] {
				panic(fmt.Sprintf("cat: shapes differ outside dim %d: %v vs %v", dim, first.Shape(), s))
			}
		}
		totalDim += s[dim]
	}

	outShape := first.Shape().Clone()
	outShape[dim] = totalDim
	out, err := tensor.NewRaw(outShape, first.DType(), first.Device())
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	offset := 0
	for _, t := range tensors {
		outer, dimSize, inner := splitAtDim(t.Shape(), dim)
		switch t.DType() {
		case tensor.Float32:
			catKernel(t.AsFloat32(), out.AsFloat32(), outer, dimSize, inner, totalDim, offset)
		case tensor.Float64:
			catKernel(t.AsFloat64(), out.AsFloat64(), outer, dimSize, inner, totalDim, offset)
		case tensor.Int32:
			catKernel(t.AsInt32(), out.AsInt32(), outer, dimSize, inner, totalDim, offset)
		default:
			panic(fmt.Sprintf("cat: unsupported dtype %s", t.DType()))
		}
		offset += dimSize
	}
	return out
}

func catKernel[T tensor.DType](in, out []T, outer, dimSize, inner, totalDim, offset int) {
	for o := 0; o < outer; o++ {
		src := in[o*dimSize*inner : (o+1)*dimSize*inner]
		dst := out[(o*totalDim+offset)*inner:]
		copy(dst[:len(src)], src)
	}
}

// Chunk splits the tensor into equal parts along dim.
func (c *CPUBackend) Chunk(t *tensor.RawTensor, chunks, dim int) []*tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("chunk: dim %d out of range for shape %v", dim, shape))
	}
	if chunks < 1 || shape[dim]%chunks != 0 {
		panic(fmt.Sprintf("chunk: cannot split dimension of size %d into %d equal chunks", shape[dim], chunks))
	}

	outer, dimSize, inner := splitAtDim(shape, dim)
	chunkSize := dimSize / chunks

	outShape := shape.Clone()
	outShape[dim] = chunkSize

	parts := make([]*tensor.RawTensor, chunks)
	for ci := 0; ci < chunks; ci++ {
		part, err := tensor.NewRaw(outShape, t.DType(), t.Device())
		if err != nil {
			panic(fmt.Sprintf("chunk: %v", err))
		}
		offset := ci * chunkSize
		switch t.DType() {
		case tensor.Float32:
			chunkKernel(t.AsFloat32(), part.AsFloat32(), outer, dimSize, inner, chunkSize, offset)
		case tensor.Float64:
			chunkKernel(t.AsFloat64(), part.AsFloat64(), outer, dimSize, inner, chunkSize, offset)
		case tensor.Int32:
			chunkKernel(t.AsInt32(), part.AsInt32(), outer, dimSize, inner, chunkSize, offset)
		default:
			panic(fmt.Sprintf("chunk: unsupported dtype %s", t.DType()))
		}
		parts[ci] = part
	}
	return parts
}

func chunkKernel[T tensor.DType](in, out []T, outer, dimSize, inner, chunkSize, offset int) {
	for o := 0; o < outer; o++ {
		src := in[(o*dimSize+offset)*inner : (o*dimSize+offset+chunkSize)*inner]
		copy(out[o*chunkSize*inner:], src)
	}
}

// Flip reverses the tensor along dim.
func (c *CPUBackend) Flip(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("flip: dim %d out of range for shape %v", dim, shape))
	}

	out, err := tensor.NewRaw(shape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("flip: %v", err))
	}

	outer, dimSize, inner := splitAtDim(shape, dim)
	switch t.DType() {
	case tensor.Float32:
		flipKernel(c.parallel, t.AsFloat32(), out.AsFloat32(), outer, dimSize, inner)
	case tensor.Float64:
		flipKernel(c.parallel, t.AsFloat64(), out.AsFloat64(), outer, dimSize, inner)
	case tensor.Int32:
		flipKernel(c.parallel, t.AsInt32(), out.AsInt32(), outer, dimSize, inner)
	default:
		panic(fmt.Sprintf("flip: unsupported dtype %s", t.DType()))
	}
	return out
}

func flipKernel[T tensor.DType](cfg parallel.Config, in, out []T, outer, dimSize, inner int) {
	parallel.ForBatch(cfg, outer, func(o int) {
		for d := 0; d < dimSize; d++ {
			src := in[(o*dimSize+d)*inner : (o*dimSize+d+1)*inner]
			dst := out[(o*dimSize+dimSize-1-d)*inner:]
			copy(dst[:inner], src)
		}
	})
}
