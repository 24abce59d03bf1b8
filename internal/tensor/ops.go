package tensor

// Method wrappers that delegate to the tensor's backend. Each returns a new
// tensor bound to the same backend; inputs are never modified unless the
// backend proves sole ownership of the buffer.

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Add(t.raw, other.raw), backend: t.backend}
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sub(t.raw, other.raw), backend: t.backend}
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Mul(t.raw, other.raw), backend: t.backend}
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Div(t.raw, other.raw), backend: t.backend}
}

// AddScalar adds a scalar to every element.
func (t *Tensor[T, B]) AddScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.AddScalar(t.raw, scalar), backend: t.backend}
}

// SubScalar subtracts a scalar from every element.
func (t *Tensor[T, B]) SubScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.SubScalar(t.raw, scalar), backend: t.backend}
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MulScalar(t.raw, scalar), backend: t.backend}
}

// DivScalar divides every element by a scalar.
func (t *Tensor[T, B]) DivScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.DivScalar(t.raw, scalar), backend: t.backend}
}

// Neg negates every element.
func (t *Tensor[T, B]) Neg() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Neg(t.raw), backend: t.backend}
}

// Exp applies the exponential function element-wise.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Exp(t.raw), backend: t.backend}
}

// Log applies the natural logarithm element-wise.
// Inputs must be strictly positive; clamp first if zeros are possible.
func (t *Tensor[T, B]) Log() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Log(t.raw), backend: t.backend}
}

// Sqrt applies the square root element-wise.
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sqrt(t.raw), backend: t.backend}
}

// ClampMin clamps every element to be at least min.
func (t *Tensor[T, B]) ClampMin(min T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.ClampMin(t.raw, min), backend: t.backend}
}

// MatMul performs matrix multiplication on the last two dimensions.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MatMul(t.raw, other.raw), backend: t.backend}
}

// Conv1D convolves this tensor [batch, inCh, time] with a kernel
// [outCh, inCh/groups, kernelSize].
func (t *Tensor[T, B]) Conv1D(kernel *Tensor[T, B], stride, padding, dilation, groups int) *Tensor[T, B] {
	raw := t.backend.Conv1D(t.raw, kernel.raw, stride, padding, dilation, groups)
	return &Tensor[T, B]{raw: raw, backend: t.backend}
}

// Reshape returns a view with a new shape. Element count must match.
func (t *Tensor[T, B]) Reshape(shape Shape) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Reshape(t.raw, shape), backend: t.backend}
}

// Transpose permutes dimensions. With no axes it reverses them;
// with exactly two axes it swaps that pair.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Transpose(t.raw, axes...), backend: t.backend}
}

// T swaps the last two dimensions.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	n := len(t.Shape())
	if n < 2 {
		panic("T: tensor must have at least 2 dimensions")
	}
	return t.Transpose(n-2, n-1)
}

// Sum reduces all elements to a scalar tensor of shape [1].
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sum(t.raw), backend: t.backend}
}

// SumDim sums along one dimension.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.SumDim(t.raw, dim, keepDim), backend: t.backend}
}

// MeanDim averages along one dimension.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MeanDim(t.raw, dim, keepDim), backend: t.backend}
}
