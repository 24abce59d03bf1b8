//go:build windows

package webgpu

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Layout operations move bytes without arithmetic. They run on the host
// over raw element blocks, which also makes them dtype-agnostic.

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

// Reshape returns a view of the tensor under a new shape.
// Tensors are always contiguous, so this never copies.
func (b *Backend) Reshape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := t.WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose permutes the tensor's dimensions and materializes the
// result in contiguous memory. With no axes the dimension order is
// reversed; with exactly two axes that pair is swapped; with rank axes
// a full permutation is applied.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
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
		a, c := axes[0], axes[1]
		if a < 0 || a >= rank || c < 0 || c >= rank {
			panic(fmt.Sprintf("transpose: axes (%d, %d) out of range for shape %v", a, c, shape))
		}
		perm[a], perm[c] = perm[c], perm[a]
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

	es := t.DType().Size()
	src, dst := t.Data(), out.Data()
	for i := 0; i < t.NumElements(); i++ {
		j := 0
		rem := i
		for d := range outStrides {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			j += coord * permStrides[d]
		}
		copy(dst[i*es:(i+1)*es], src[j*es:(j+1)*es])
	}
	return out
}

// Cat concatenates tensors along dim. All inputs must agree on dtype
// and on every dimension except dim.
func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
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

	es := first.DType().Size()
	offset := 0
	for _, t := range tensors {
		outer, dimSize, inner := splitAtDim(t.Shape(), dim)
		src, dst := t.Data(), out.Data()
		for o := 0; o < outer; o++ {
			block := src[o*dimSize*inner*es : (o+1)*dimSize*inner*es]
			copy(dst[(o*totalDim+offset)*inner*es:], block)
		}
		offset += dimSize
	}
	return out
}

// Chunk splits the tensor into equal parts along dim.
func (b *Backend) Chunk(t *tensor.RawTensor, chunks, dim int) []*tensor.RawTensor {
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

	es := t.DType().Size()
	src := t.Data()
	parts := make([]*tensor.RawTensor, chunks)
	for ci := 0; ci < chunks; ci++ {
		part, err := tensor.NewRaw(outShape, t.DType(), t.Device())
		if err != nil {
			panic(fmt.Sprintf("chunk: %v", err))
		}
		offset := ci * chunkSize
		dst := part.Data()
		for o := 0; o < outer; o++ {
			block := src[(o*dimSize+offset)*inner*es : (o*dimSize+offset+chunkSize)*inner*es]
			copy(dst[o*chunkSize*inner*es:], block)
		}
		parts[ci] = part
	}
	return parts
}

// Flip reverses the tensor along dim.
func (b *Backend) Flip(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("flip: dim %d out of range for shape %v", dim, shape))
	}

	out, err := tensor.NewRaw(shape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("flip: %v", err))
	}

	es := t.DType().Size()
	src, dst := t.Data(), out.Data()
	outer, dimSize, inner := splitAtDim(shape, dim)
	for o := 0; o < outer; o++ {
		for d := 0; d < dimSize; d++ {
			block := src[(o*dimSize+d)*inner*es : (o*dimSize+d+1)*inner*es]
			copy(dst[(o*dimSize+dimSize-1-d)*inner*es:], block)
		}
	}
	return out
}
