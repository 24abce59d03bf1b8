package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestParameterLoad tests that Load swaps in a compatible tensor.
func TestParameterLoad(t *testing.T) {
	backend := cpu.New()
	p := NewParameter("weight", tensor.Zeros[float32](backend, tensor.Shape{2, 3}))

	replacement := tensor.Ones[float32](backend, tensor.Shape{2, 3})
	require.NoError(t, p.Load(replacement))
	assert.Same(t, replacement, p.Tensor())
	assert.Equal(t, "weight", p.Name())
}

// TestParameterLoadShapeMismatch tests the shape validation error.
func TestParameterLoadShapeMismatch(t *testing.T) {
	backend := cpu.New()
	p := NewParameter("weight", tensor.Zeros[float32](backend, tensor.Shape{2, 3}))

	err := p.Load(tensor.Zeros[float32](backend, tensor.Shape{3, 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")
	assert.Contains(t, err.Error(), `"weight"`)
}
