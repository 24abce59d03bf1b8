package nn

import (
	"math"
	"math/rand"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Padding returns the symmetric padding that keeps sequence length
// constant for an odd kernel size under the given dilation.
func Padding(kernelSize, dilation int) int {
	return dilation * (kernelSize - 1) / 2
}

// fans computes fan-in and fan-out for a weight tensor. Dimensions past
// the second form the receptive field, so a conv weight
// [out, in, kernel] gets fanIn = in*kernel and fanOut = out*kernel.
func fans(shape tensor.Shape) (fanIn, fanOut int) {
	if len(shape) < 2 {
		n := shape.NumElements()
		return n, n
	}
	receptive := 1
	for _, d := range shape[2:] {
		receptive *= d
	}
	return shape[1] * receptive, shape[0] * receptive
}

// Xavier fills t with the Glorot uniform distribution at gain 1.
func Xavier[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	XavierGain(t, 1)
}

// XavierGain fills t with U(-a, a) where a = gain * sqrt(6/(fanIn+fanOut)).
func XavierGain[B tensor.Backend](t *tensor.Tensor[float32, B], gain float64) {
	fanIn, fanOut := fans(t.Shape())
	bound := gain * math.Sqrt(6.0/float64(fanIn+fanOut))
	Uniform(t, -bound, bound)
}

// Uniform fills t with U(low, high).
func Uniform[B tensor.Backend](t *tensor.Tensor[float32, B], low, high float64) {
	data := t.Data()
	for i := range data {
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		data[i] = float32(low + rand.Float64()*(high-low))
	}
}

// Normal fills t with N(mean, std^2) using the Box-Muller transform.
func Normal[B tensor.Backend](t *tensor.Tensor[float32, B], mean, std float64) {
	data := t.Data()
	for i := range data {
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		u1 := rand.Float64()
		//nolint:gosec // G404: math/rand is fine for weight initialization.
		u2 := rand.Float64()
		z := math.Sqrt(-2*math.Log(u1+1e-12)) * math.Cos(2*math.Pi*u2)
		data[i] = float32(mean + std*z)
	}
}

// Zeros fills t with zeros.
func Zeros[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	data := t.Data()
	for i := range data {
		data[i] = 0
	}
}

// Ones fills t with ones.
func Ones[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	data := t.Data()
	for i := range data {
		data[i] = 1
	}
}
