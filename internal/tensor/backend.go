package tensor

// Backend defines the operations a compute device must provide.
//
// Backends operate on RawTensor values and panic on shape or dtype
// mismatches. The generic Tensor wrapper delegates to the backend carried
// in its type parameter, so backend selection is a compile-time decision.
//
// Optional operations (activations, fused kernels) are not part of this
// interface. Layers discover them through capability assertions such as
//
//	if b, ok := any(backend).(interface{ Rsqrt(*RawTensor) *RawTensor }); ok { ... }
//
// which keeps the core contract small while letting backends compete on
// fused implementations.
type Backend interface {
	// Name returns the backend's identifier, e.g. "cpu" or "webgpu".
	Name() string

	// Device returns the device this backend computes on.
	Device() Device

	// Add performs element-wise addition with broadcasting.
	Add(a, b *RawTensor) *RawTensor

	// Sub performs element-wise subtraction with broadcasting.
	Sub(a, b *RawTensor) *RawTensor

	// Mul performs element-wise multiplication with broadcasting.
	Mul(a, b *RawTensor) *RawTensor

	// Div performs element-wise division with broadcasting.
	Div(a, b *RawTensor) *RawTensor

	// AddScalar adds a scalar to every element.
	AddScalar(t *RawTensor, scalar any) *RawTensor

	// SubScalar subtracts a scalar from every element.
	SubScalar(t *RawTensor, scalar any) *RawTensor

	// MulScalar multiplies every element by a scalar.
	MulScalar(t *RawTensor, scalar any) *RawTensor

	// DivScalar divides every element by a scalar.
	DivScalar(t *RawTensor, scalar any) *RawTensor

	// Neg negates every element.
	Neg(t *RawTensor) *RawTensor

	// Exp applies the exponential function element-wise.
	Exp(t *RawTensor) *RawTensor

	// Log applies the natural logarithm element-wise.
	Log(t *RawTensor) *RawTensor

	// Sqrt applies the square root element-wise.
	Sqrt(t *RawTensor) *RawTensor

	// ClampMin clamps every element to be at least min.
	ClampMin(t *RawTensor, min any) *RawTensor

	// MatMul performs matrix multiplication on the last two dimensions.
	MatMul(a, b *RawTensor) *RawTensor

	// Conv1D performs a 1D convolution of input [batch, inCh, time] with
	// kernel [outCh, inCh/groups, kernelSize].
	Conv1D(input, kernel *RawTensor, stride, padding, dilation, groups int) *RawTensor

	// Reshape returns a view with a new shape. Element count must match.
	Reshape(t *RawTensor, shape Shape) *RawTensor

	// Transpose permutes dimensions. With no axes it reverses them;
	// with exactly two axes it swaps that pair.
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Sum reduces all elements to a scalar tensor.
	Sum(t *RawTensor) *RawTensor

	// SumDim sums along one dimension.
	SumDim(t *RawTensor, dim int, keepDim bool) *RawTensor

	// MeanDim averages along one dimension.
	MeanDim(t *RawTensor, dim int, keepDim bool) *RawTensor

	// Cat concatenates tensors along the given dimension.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Chunk splits a tensor into equal parts along the given dimension.
	Chunk(t *RawTensor, chunks, dim int) []*RawTensor

	// Flip reverses a tensor along the given dimension.
	Flip(t *RawTensor, dim int) *RawTensor

	// Embedding gathers rows of weight [vocab, dim] by indices [batch, time].
	Embedding(weight, indices *RawTensor) *RawTensor
}
