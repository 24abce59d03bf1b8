package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestPadding tests same-length padding for odd kernels.
func TestPadding(t *testing.T) {
	tests := []struct {
		kernelSize int
		dilation   int
		want       int
	}{
		{1, 1, 0},
		{3, 1, 1},
		{5, 1, 2},
		{3, 2, 2},
		{3, 9, 9},
		{7, 3, 9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Padding(tt.kernelSize, tt.dilation),
			"Padding(%d, %d)", tt.kernelSize, tt.dilation)
	}
}

// TestXavierBounds tests that Glorot init stays inside its bound and
// actually spreads out.
func TestXavierBounds(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name  string
		shape tensor.Shape
		// fanIn + fanOut for the bound sqrt(6/(fanIn+fanOut)).
		fanSum int
	}{
		{name: "linear", shape: tensor.Shape{4, 6}, fanSum: 10},
		{name: "conv", shape: tensor.Shape{8, 4, 5}, fanSum: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tensor.Zeros[float32](backend, tt.shape)
			Xavier(w)

			bound := math.Sqrt(6.0 / float64(tt.fanSum))
			var maxAbs float64
			for _, v := range w.Data() {
				abs := math.Abs(float64(v))
				assert.LessOrEqual(t, abs, bound+1e-6, "value outside Xavier bound")
				if abs > maxAbs {
					maxAbs = abs
				}
			}
			assert.Greater(t, maxAbs, bound/4, "init suspiciously concentrated at zero")
		})
	}
}

// TestXavierGain tests that the gain scales the bound.
func TestXavierGain(t *testing.T) {
	backend := cpu.New()
	w := tensor.Zeros[float32](backend, tensor.Shape{10, 10})
	gain := math.Sqrt2
	XavierGain(w, gain)

	bound := gain * math.Sqrt(6.0/20.0)
	for _, v := range w.Data() {
		assert.LessOrEqual(t, math.Abs(float64(v)), bound+1e-6)
	}
}

// TestUniformBounds tests the half-open fill range.
func TestUniformBounds(t *testing.T) {
	backend := cpu.New()
	w := tensor.Zeros[float32](backend, tensor.Shape{500})
	Uniform(w, -0.5, 2)

	for _, v := range w.Data() {
		assert.GreaterOrEqual(t, float64(v), -0.5)
		assert.Less(t, float64(v), 2.0)
	}
}

// TestNormalMoments tests the Box-Muller fill statistically.
func TestNormalMoments(t *testing.T) {
	backend := cpu.New()
	w := tensor.Zeros[float32](backend, tensor.Shape{10000})
	Normal(w, 0, 1)

	var sum, sumSq float64
	for _, v := range w.Data() {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	mean := sum / 10000
	std := math.Sqrt(sumSq/10000 - mean*mean)

	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 1.0, std, 0.1)
}

// TestZerosOnes tests the constant fills.
func TestZerosOnes(t *testing.T) {
	backend := cpu.New()
	w := tensor.Randn[float32](backend, tensor.Shape{16})

	Zeros(w)
	for _, v := range w.Data() {
		assert.Zero(t, v)
	}

	Ones(w)
	for _, v := range w.Data() {
		assert.Equal(t, float32(1), v)
	}
}
