package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestChannelNormStatistics tests that each (batch, time) column is
// normalized to zero mean and unit variance across channels.
func TestChannelNormStatistics(t *testing.T) {
	backend := cpu.New()
	norm := NewChannelNorm(backend, 4)

	x := mustTensor(t, backend, []float32{
		0.5, -1.2, 2.0,
		0.3, 0.9, -0.7,
		-1.5, 2.2, 0.1,
		1.1, -0.4, -2.3,

		2.5, 0.0, -1.0,
		-0.5, 1.5, 3.0,
		1.0, -2.0, 0.5,
		0.0, 0.5, -1.5,
	}, tensor.Shape{2, 4, 3})

	out := norm.Forward(x)
	require.Equal(t, []int{2, 4, 3}, []int(out.Shape()))

	for b := 0; b < 2; b++ {
		for ti := 0; ti < 3; ti++ {
			var mean float64
			for c := 0; c < 4; c++ {
				mean += float64(out.At(b, c, ti))
			}
			mean /= 4

			var variance float64
			for c := 0; c < 4; c++ {
				d := float64(out.At(b, c, ti)) - mean
				variance += d * d
			}
			variance /= 4

			assert.InDelta(t, 0.0, mean, 1e-5, "mean not zero at batch %d time %d", b, ti)
			assert.InDelta(t, 1.0, variance, 1e-3, "variance not one at batch %d time %d", b, ti)
		}
	}
}

// TestChannelNormGainBias tests that gamma and beta rescale the
// normalized activations per channel.
func TestChannelNormGainBias(t *testing.T) {
	backend := cpu.New()
	base := NewChannelNorm(backend, 2)
	scaled := NewChannelNorm(backend, 2)

	gamma := mustTensor(t, backend, []float32{2, 2}, tensor.Shape{2})
	beta := mustTensor(t, backend, []float32{0.5, 0.5}, tensor.Shape{2})
	require.NoError(t, scaled.LoadStateDict(map[string]*tensor.Tensor[float32, Backend]{
		"gamma": gamma,
		"beta":  beta,
	}))

	x := mustTensor(t, backend, []float32{1, -2, 3, 0.5, 2, -1}, tensor.Shape{1, 2, 3})
	outBase := base.Forward(x).Data()
	outScaled := scaled.Forward(x).Data()

	for i := range outBase {
		assert.InDelta(t, 2*outBase[i]+0.5, outScaled[i], 1e-5, "gain/bias mismatch at index %d", i)
	}
}

// TestChannelNormStateDictRoundTrip tests that a second layer loaded from
// the first's state dict produces identical outputs.
func TestChannelNormStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := NewChannelNorm(backend, 3)
	Normal(src.Parameters()[0].Tensor(), 1, 0.2)
	Normal(src.Parameters()[1].Tensor(), 0, 0.2)

	dst := NewChannelNorm(backend, 3)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Randn[float32](backend, tensor.Shape{2, 3, 5})
	a := src.Forward(x).Data()
	b := dst.Forward(x).Data()
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6, "output mismatch at index %d", i)
	}
}

// TestChannelNormLoadMissingKey tests the error for an incomplete state dict.
func TestChannelNormLoadMissingKey(t *testing.T) {
	backend := cpu.New()
	norm := NewChannelNorm(backend, 2)

	err := norm.LoadStateDict(map[string]*tensor.Tensor[float32, Backend]{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing key")
}

// TestChannelNormInvalidInput tests shape validation.
func TestChannelNormInvalidInput(t *testing.T) {
	backend := cpu.New()
	norm := NewChannelNorm(backend, 4)

	rank2 := tensor.Zeros[float32](backend, tensor.Shape{4, 3})
	assert.Panics(t, func() { norm.Forward(rank2) })

	wrongChannels := tensor.Zeros[float32](backend, tensor.Shape{1, 3, 5})
	assert.Panics(t, func() { norm.Forward(wrongChannels) })

	assert.Panics(t, func() { NewChannelNorm(backend, 0) })
}

// BenchmarkChannelNorm benchmarks Forward on a typical activation size.
func BenchmarkChannelNorm(b *testing.B) {
	backend := cpu.New()
	norm := NewChannelNorm(backend, 192)
	x := tensor.Randn[float32](backend, tensor.Shape{4, 192, 256})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = norm.Forward(x)
	}
}
