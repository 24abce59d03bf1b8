package flow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/serialization"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestCheckpointRoundTrip tests that a chain saved to disk and loaded into
// a freshly constructed sibling reproduces the original outputs bitwise.
func TestCheckpointRoundTrip(t *testing.T) {
	backend := cpu.New()
	chain := testChain(backend)
	path := filepath.Join(t.TempDir(), "chain.vxf")

	require.NoError(t, Save[Backend](chain, path, SaveOptions{}))

	sibling := testChain(backend)
	require.NotEqual(t, chain.StateDict()["0.m"].Data(), sibling.StateDict()["0.m"].Data(),
		"fresh sibling should start from different parameters")
	require.NoError(t, Load[Backend](backend, sibling, path))

	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 7})
	mask := onesMask(backend, 2, 7)
	y1, l1 := chain.Forward(x, mask, nil)
	y2, l2 := sibling.Forward(x, mask, nil)
	require.Equal(t, y1.Data(), y2.Data())
	require.Equal(t, l1.Data(), l2.Data())
}

// TestCheckpointFloat16 tests that half-precision storage stays within
// half-precision tolerance on every parameter and barely moves the outputs.
func TestCheckpointFloat16(t *testing.T) {
	backend := cpu.New()
	chain := testChain(backend)
	path := filepath.Join(t.TempDir(), "chain-f16.vxf")

	require.NoError(t, Save[Backend](chain, path, SaveOptions{Float16: true}))

	sibling := testChain(backend)
	require.NoError(t, Load[Backend](backend, sibling, path))

	want := chain.StateDict()
	got := sibling.StateDict()
	require.Len(t, got, len(want))
	for name, w := range want {
		g, ok := got[name]
		require.True(t, ok, "missing tensor %s", name)
		for i, v := range w.Data() {
			assert.InDelta(t, v, g.Data()[i], 1e-3, "tensor %s index %d", name, i)
		}
	}

	x := tensor.Randn[float32](backend, tensor.Shape{2, 4, 6})
	mask := onesMask(backend, 2, 6)
	y1, _ := chain.Forward(x, mask, nil)
	y2, _ := sibling.Forward(x, mask, nil)
	assert.Less(t, maxAbsDiff(t, y1.Data(), y2.Data()), 1e-2, "output drift too large")
}

// TestCheckpointHeader tests the model type, metadata and tensor listing
// visible through the serialization reader.
func TestCheckpointHeader(t *testing.T) {
	backend := cpu.New()
	chain := testChain(backend)
	path := filepath.Join(t.TempDir(), "chain.vxf")

	require.NoError(t, Save[Backend](chain, path, SaveOptions{
		Metadata: map[string]string{"epoch": "12", "dataset": "ljs"},
	}))

	r, err := serialization.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, ChainModelType, r.Header().ModelType)
	assert.Equal(t, "12", r.Metadata()["epoch"])
	assert.Equal(t, "ljs", r.Metadata()["dataset"])

	names := r.TensorNames()
	assert.Len(t, names, len(chain.StateDict()))
	assert.Contains(t, names, "0.m")
	assert.Contains(t, names, "2.proj.weight")
}

// TestCheckpointWrongArchitecture tests that loading into a different
// architecture reports the failing transform index.
func TestCheckpointWrongArchitecture(t *testing.T) {
	backend := cpu.New()
	ea := NewElementwiseAffine[Backend](backend, 4)
	nn.Normal(ea.StateDict()["m"], 0, 0.1)
	path := filepath.Join(t.TempDir(), "affine.vxf")
	require.NoError(t, Save[Backend](NewChain[Backend](ea), path, SaveOptions{}))

	chain := NewChain[Backend](testConvFlow(backend))
	err := Load[Backend](backend, chain, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform 0")
}

// TestCheckpointMissingFile tests that loading from a path that does not
// exist fails cleanly.
func TestCheckpointMissingFile(t *testing.T) {
	backend := cpu.New()
	chain := testChain(backend)
	err := Load[Backend](backend, chain, filepath.Join(t.TempDir(), "absent.vxf"))
	require.Error(t, err)
}
