package tensor

import "fmt"

// Cat concatenates tensors along the given dimension.
// All tensors must share their shape except along dim.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: no tensors to concatenate")
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	backend := tensors[0].backend
	return &Tensor[T, B]{raw: backend.Cat(raws, dim), backend: backend}
}

// Chunk splits the tensor into equal parts along the given dimension.
// The dimension size must be divisible by chunks.
func (t *Tensor[T, B]) Chunk(chunks, dim int) []*Tensor[T, B] {
	raws := t.backend.Chunk(t.raw, chunks, dim)
	out := make([]*Tensor[T, B], len(raws))
	for i, raw := range raws {
		out[i] = &Tensor[T, B]{raw: raw, backend: t.backend}
	}
	return out
}

// Flip reverses the tensor along the given dimension.
func (t *Tensor[T, B]) Flip(dim int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Flip(t.raw, dim), backend: t.backend}
}

// Unsqueeze inserts a dimension of size 1 at the given position.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	shape := t.Shape()
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dim %d out of range for shape %v", dim, shape))
	}
	newShape := make(Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return t.Reshape(newShape)
}

// Squeeze removes a dimension of size 1 at the given position.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("squeeze: dim %d out of range for shape %v", dim, shape))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, want 1", dim, shape[dim]))
	}
	newShape := make(Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)
	return t.Reshape(newShape)
}

// Embedding gathers rows of this [vocab, dim] weight tensor by int32
// indices of shape [batch, time], producing [batch, time, dim].
func Embedding[T DType, B Backend](weight *Tensor[T, B], indices *Tensor[int32, B]) *Tensor[T, B] {
	raw := weight.backend.Embedding(weight.raw, indices.raw)
	return &Tensor[T, B]{raw: raw, backend: weight.backend}
}
