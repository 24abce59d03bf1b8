package flow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

type Backend = *cpu.CPUBackend

// Every variant and the chain must satisfy the transform interface.
var (
	_ Transform[Backend] = (*Log[Backend])(nil)
	_ Transform[Backend] = (*ElementwiseAffine[Backend])(nil)
	_ Transform[Backend] = (*Flip[Backend])(nil)
	_ Transform[Backend] = (*ConvFlow[Backend])(nil)
	_ Transform[Backend] = (*Chain[Backend])(nil)
)

// mustTensor builds a float32 tensor for testing, failing on error.
func mustTensor(t *testing.T, backend Backend, data []float32, shape tensor.Shape) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(backend, data, shape)
	require.NoError(t, err)
	return x
}

// onesMask builds a full-coverage [batch, 1, time] mask.
func onesMask(backend Backend, batch, time int) *tensor.Tensor[float32, Backend] {
	return tensor.Ones[float32](backend, tensor.Shape{batch, 1, time})
}

// maxAbsDiff returns the largest elementwise deviation between a and b.
func maxAbsDiff(t *testing.T, a, b []float32) float64 {
	t.Helper()
	require.Equal(t, len(a), len(b))
	var worst float64
	for i := range a {
		if d := math.Abs(float64(a[i]) - float64(b[i])); d > worst {
			worst = d
		}
	}
	return worst
}
