package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents where tensor data lives.
type Device int

// Supported devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable name for the device.
func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case WebGPU:
		return "webgpu"
	default:
		return "unknown"
	}
}

// tensorBuffer is a reference-counted byte buffer shared between tensor views.
// Views created by Reshape or Clone share the same buffer; the buffer is
// reclaimed when the last reference is released.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex
}

// newTensorBuffer creates a buffer with an initial reference count of 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count.
func (b *tensorBuffer) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and frees the data when it reaches zero.
func (b *tensorBuffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		b.data = nil
		b.mu.Unlock()
	}
}

// isUnique reports whether this buffer has exactly one reference.
// Backends use this to decide whether an operation may write in place.
func (b *tensorBuffer) isUnique() bool {
	return b.refCount.Load() == 1
}

// RawTensor is the untyped tensor representation shared by all backends.
// It couples a reference-counted buffer with shape, stride, and dtype
// metadata. Generic tensors wrap a RawTensor with compile-time type safety.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
	offset int
}

// NewRaw creates a zero-filled raw tensor with the given shape, dtype and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	size := shape.NumElements() * dtype.Size()
	return &RawTensor{
		buffer: newTensorBuffer(size),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
		offset: 0,
	}, nil
}

// Shape returns the tensor's shape. The returned slice must not be modified.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Stride returns the tensor's strides. The returned slice must not be modified.
func (r *RawTensor) Stride() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the device the tensor lives on.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the raw backing bytes of the tensor.
func (r *RawTensor) Data() []byte {
	return r.buffer.data[r.offset:]
}

// AsFloat32 reinterprets the backing bytes as a []float32.
// Panics if the dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("AsFloat32 called on %s tensor", r.dtype))
	}
	data := r.Data()
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // Reinterpreting aligned buffer as float32 slice is safe here.
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 reinterprets the backing bytes as a []float64.
// Panics if the dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("AsFloat64 called on %s tensor", r.dtype))
	}
	data := r.Data()
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // Reinterpreting aligned buffer as float64 slice is safe here.
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 reinterprets the backing bytes as a []int32.
// Panics if the dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("AsInt32 called on %s tensor", r.dtype))
	}
	data := r.Data()
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // Reinterpreting aligned buffer as int32 slice is safe here.
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Clone returns a new view that shares this tensor's buffer.
// The reference count is incremented; call Release on the clone when done.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
		offset: r.offset,
	}
}

// Release decrements the buffer's reference count.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique reports whether this tensor is the sole owner of its buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// WithShape returns a view of the same buffer under a different shape.
// The element count must match.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v (%d elements) as %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements())
	}
	view := r.Clone()
	view.shape = shape.Clone()
	view.stride = shape.ComputeStrides()
	return view, nil
}

// String returns a compact description of the raw tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v, dtype=%s, device=%s)", r.shape, r.dtype, r.device)
}
