package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestLinearNormKnownValues tests a hand-computed projection.
func TestLinearNormKnownValues(t *testing.T) {
	backend := cpu.New()
	linear := NewLinearNorm(backend, LinearNormConfig{InFeatures: 2, OutFeatures: 3})

	copy(linear.StateDict()["weight"].Data(), []float32{1, 2, 3, 4, 5, 6})
	copy(linear.StateDict()["bias"].Data(), []float32{0.1, 0.2, 0.3})

	x := mustTensor(t, backend, []float32{10, 20}, tensor.Shape{1, 2})
	out := linear.Forward(x)

	require.Equal(t, []int{1, 3}, []int(out.Shape()))
	want := []float32{90.1, 120.2, 150.3}
	got := out.Data()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "linear output mismatch at index %d", i)
	}
}

// TestLinearNormBatched tests the [batch, time, features] path.
func TestLinearNormBatched(t *testing.T) {
	backend := cpu.New()
	linear := NewLinearNorm(backend, LinearNormConfig{InFeatures: 8, OutFeatures: 5})

	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 8})
	out := linear.Forward(x)
	assert.Equal(t, []int{2, 4, 5}, []int(out.Shape()))
}

// TestLinearNormNoBias tests the bias-free configuration.
func TestLinearNormNoBias(t *testing.T) {
	backend := cpu.New()
	linear := NewLinearNorm(backend, LinearNormConfig{InFeatures: 4, OutFeatures: 4, NoBias: true})

	params := linear.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "weight", params[0].Name())
}

// TestLinearNormFeatureMismatch tests that a wrong trailing dimension panics.
func TestLinearNormFeatureMismatch(t *testing.T) {
	backend := cpu.New()
	linear := NewLinearNorm(backend, LinearNormConfig{InFeatures: 2, OutFeatures: 2})

	x := tensor.Zeros[float32](backend, tensor.Shape{1, 3})
	assert.Panics(t, func() { linear.Forward(x) })
}
