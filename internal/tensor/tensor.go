package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a typed, backend-bound view over a RawTensor.
//
// The element type T and backend type B are part of the tensor's type, so
// mixing dtypes or devices is a compile error rather than a runtime surprise.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New creates a zero-filled tensor with the given shape.
func New[T DType, B Backend](backend B, shape Shape) (*Tensor[T, B], error) {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), backend.Device())
	if err != nil {
		return nil, err
	}
	return &Tensor[T, B]{raw: raw, backend: backend}, nil
}

// FromSlice creates a tensor from a flat slice of data in row-major order.
func FromSlice[T DType, B Backend](backend B, data []T, shape Shape) (*Tensor[T, B], error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t, err := New[T](backend, shape)
	if err != nil {
		return nil, err
	}
	copy(t.Data(), data)
	return t, nil
}

// FromRaw wraps an existing RawTensor in a typed tensor.
// Panics if the raw dtype does not match T.
func FromRaw[T DType, B Backend](backend B, raw *RawTensor) *Tensor[T, B] {
	var dummy T
	if want := inferDataType(dummy); raw.DType() != want {
		panic(fmt.Sprintf("FromRaw: raw tensor is %s, want %s", raw.DType(), want))
	}
	return &Tensor[T, B]{raw: raw, backend: backend}
}

// Raw returns the underlying RawTensor.
func (t *Tensor[T, B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the backend this tensor is bound to.
func (t *Tensor[T, B]) Backend() B {
	return t.backend
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType {
	return t.raw.DType()
}

// Device returns the device the tensor lives on.
func (t *Tensor[T, B]) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int {
	return t.raw.NumElements()
}

// Data returns the tensor's elements as a typed slice sharing the
// underlying buffer. Mutations are visible to every view of the buffer.
func (t *Tensor[T, B]) Data() []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	default:
		panic(fmt.Sprintf("unsupported tensor type %T", dummy))
	}
}

// flatIndex converts multi-dimensional indices to a flat buffer index.
func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.raw.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices for shape %v, got %d", len(shape), shape, len(indices)))
	}
	stride := t.raw.Stride()
	flat := 0
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, shape[i]))
		}
		flat += idx * stride[i]
	}
	return flat
}

// At returns the element at the given indices.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set stores a value at the given indices.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

// Item returns the value of a single-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item called on tensor with %d elements", t.NumElements()))
	}
	return t.Data()[0]
}

// Clone returns a new tensor view sharing this tensor's buffer.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw.Clone(), backend: t.backend}
}

// Release decrements the underlying buffer's reference count.
func (t *Tensor[T, B]) Release() {
	t.raw.Release()
}

// String returns a compact, human-readable description of the tensor.
func (t *Tensor[T, B]) String() string {
	const maxPreview = 8
	data := t.Data()
	var b strings.Builder
	fmt.Fprintf(&b, "Tensor(shape=%v, dtype=%s, data=[", t.Shape(), t.DType())
	for i, v := range data {
		if i >= maxPreview {
			b.WriteString(", ...")
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteString("])")
	return b.String()
}
