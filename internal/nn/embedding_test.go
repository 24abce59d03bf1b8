package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestEmbeddingLookup tests that Forward gathers the right table rows.
func TestEmbeddingLookup(t *testing.T) {
	backend := cpu.New()
	emb := NewEmbedding(backend, 5, 3)

	weight := emb.StateDict()["weight"].Data()
	for i := range weight {
		weight[i] = float32(i)
	}

	ids, err := tensor.FromSlice(backend, []int32{4, 0, 1, 3}, tensor.Shape{2, 2})
	require.NoError(t, err)

	out := emb.Forward(ids)
	require.Equal(t, []int{2, 2, 3}, []int(out.Shape()))

	wantRows := map[[2]int][]float32{
		{0, 0}: {12, 13, 14},
		{0, 1}: {0, 1, 2},
		{1, 0}: {3, 4, 5},
		{1, 1}: {9, 10, 11},
	}
	for pos, want := range wantRows {
		for k, w := range want {
			assert.InDelta(t, w, out.At(pos[0], pos[1], k), 1e-6,
				"row mismatch at (%d, %d, %d)", pos[0], pos[1], k)
		}
	}
}

// TestEmbeddingInitScale tests the N(0, dim^-1/2) initialization moments.
func TestEmbeddingInitScale(t *testing.T) {
	backend := cpu.New()
	emb := NewEmbedding(backend, 1000, 16)

	data := emb.StateDict()["weight"].Data()
	var sum, sumSq float64
	for _, v := range data {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(len(data))
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 0.0, mean, 0.01)
	assert.InDelta(t, 0.25, std, 0.02)
}

// TestEmbeddingAccessors tests the size accessors and validation.
func TestEmbeddingAccessors(t *testing.T) {
	backend := cpu.New()
	emb := NewEmbedding(backend, 7, 4)

	assert.Equal(t, 7, emb.VocabSize())
	assert.Equal(t, 4, emb.Dim())
	assert.Len(t, emb.Parameters(), 1)

	assert.Panics(t, func() { NewEmbedding(backend, 0, 4) })
}
