package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// TestTextResidualBlockShape tests shape preservation through the units.
func TestTextResidualBlockShape(t *testing.T) {
	backend := cpu.New()
	block := NewTextResidualBlock(backend, 2, 3, 2)

	x := tensor.Randn[float32](backend, tensor.Shape{1, 2, 6})
	out := block.Forward(x, nil)
	assert.Equal(t, []int{1, 2, 6}, []int(out.Shape()))
}

// TestTextResidualBlockMask tests that masked time steps come out exactly
// zero.
func TestTextResidualBlockMask(t *testing.T) {
	backend := cpu.New()
	block := NewTextResidualBlock(backend, 2, 3, 2)

	x := tensor.Randn[float32](backend, tensor.Shape{1, 2, 5})
	mask := mustTensor(t, backend, []float32{1, 1, 0, 0, 0}, tensor.Shape{1, 1, 5})

	out := block.Forward(x, mask)
	for c := 0; c < 2; c++ {
		for ti := 2; ti < 5; ti++ {
			assert.Zero(t, out.At(0, c, ti), "masked position (%d, %d) not zeroed", c, ti)
		}
	}
}

// TestTextResidualBlockParameters tests the parameter count: each unit
// carries a three-layer DDSConv stack plus its own ChannelNorm.
func TestTextResidualBlockParameters(t *testing.T) {
	backend := cpu.New()
	block := NewTextResidualBlock(backend, 2, 3, 2)

	// Per DDSConv layer: sep conv (2) + point conv (2) + two norms (4).
	perUnit := 3*8 + 2
	assert.Len(t, block.Parameters(), 2*perUnit)
}

// TestTextResidualBlockStateDictRoundTrip tests loading a sibling block.
func TestTextResidualBlockStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := NewTextResidualBlock(backend, 2, 3, 2)
	dst := NewTextResidualBlock(backend, 2, 3, 2)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Randn[float32](backend, tensor.Shape{1, 2, 7})
	a := src.Forward(x, nil).Data()
	b := dst.Forward(x, nil).Data()
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6, "output mismatch at index %d", i)
	}
}

// TestTextResidualBlockInvalidUnits tests unit count validation.
func TestTextResidualBlockInvalidUnits(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() { NewTextResidualBlock(backend, 2, 3, 0) })
}
