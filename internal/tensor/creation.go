package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	t, err := New[T](backend, shape)
	if err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return Full[T](backend, shape, T(1))
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](backend B, shape Shape, value T) *Tensor[T, B] {
	t, err := New[T](backend, shape)
	if err != nil {
		panic(fmt.Sprintf("full: %v", err))
	}
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with elements drawn from the standard normal
// distribution, using the Box-Muller transform.
func Randn[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	t, err := New[T](backend, shape)
	if err != nil {
		panic(fmt.Sprintf("randn: %v", err))
	}
	data := t.Data()
	for i := range data {
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		u1 := rand.Float64()
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		u2 := rand.Float64()
		z := math.Sqrt(-2*math.Log(u1+1e-12)) * math.Cos(2*math.Pi*u2)
		data[i] = T(z)
	}
	return t
}

// Rand creates a tensor with elements drawn uniformly from [0, 1).
func Rand[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	t, err := New[T](backend, shape)
	if err != nil {
		panic(fmt.Sprintf("rand: %v", err))
	}
	data := t.Data()
	for i := range data {
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		data[i] = T(rand.Float64())
	}
	return t
}

// Arange creates a 1-D tensor with values from start to end (exclusive)
// in increments of step.
func Arange[T DType, B Backend](backend B, start, end, step T) *Tensor[T, B] {
	if step == 0 {
		panic("arange: step must be non-zero")
	}
	n := int(math.Ceil(float64(end-start) / float64(step)))
	if n <= 0 {
		panic(fmt.Sprintf("arange: empty range [%v, %v) with step %v", start, end, step))
	}
	t, err := New[T](backend, Shape{n})
	if err != nil {
		panic(fmt.Sprintf("arange: %v", err))
	}
	data := t.Data()
	v := start
	for i := range data {
		data[i] = v
		v += step
	}
	return t
}
