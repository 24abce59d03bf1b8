package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxflow-ml/voxflow/internal/backend/cpu"
)

// TestPositionalEncodingValues tests the sinusoid table against the
// closed form.
func TestPositionalEncodingValues(t *testing.T) {
	backend := cpu.New()
	pe := NewPositionalEncoding(backend, 4, 8)

	out := pe.Forward(2)
	require.Equal(t, []int{1, 2, 4}, []int(out.Shape()))

	// Position 0: sin(0)=0 on even features, cos(0)=1 on odd.
	assert.InDelta(t, 0.0, out.At(0, 0, 0), 1e-6)
	assert.InDelta(t, 1.0, out.At(0, 0, 1), 1e-6)
	assert.InDelta(t, 0.0, out.At(0, 0, 2), 1e-6)
	assert.InDelta(t, 1.0, out.At(0, 0, 3), 1e-6)

	// Position 1: frequency 1 for the first pair, 1/100 for the second.
	assert.InDelta(t, math.Sin(1), out.At(0, 1, 0), 1e-5)
	assert.InDelta(t, math.Cos(1), out.At(0, 1, 1), 1e-5)
	assert.InDelta(t, math.Sin(0.01), out.At(0, 1, 2), 1e-5)
	assert.InDelta(t, math.Cos(0.01), out.At(0, 1, 3), 1e-5)
}

// TestPositionalEncodingImmutable tests that mutating a returned tensor
// does not corrupt the table.
func TestPositionalEncodingImmutable(t *testing.T) {
	backend := cpu.New()
	pe := NewPositionalEncoding(backend, 4, 8)

	out := pe.Forward(3)
	out.Data()[1] = 42

	fresh := pe.Forward(3)
	assert.InDelta(t, 1.0, fresh.At(0, 0, 1), 1e-6, "table corrupted by caller mutation")
}

// TestPositionalEncodingBounds tests sequence length validation.
func TestPositionalEncodingBounds(t *testing.T) {
	backend := cpu.New()
	pe := NewPositionalEncoding(backend, 4, 8)

	assert.Equal(t, 4, pe.Dim())
	assert.Equal(t, 8, pe.MaxLen())

	assert.Panics(t, func() { pe.Forward(9) })
	assert.Panics(t, func() { pe.Forward(0) })
	assert.NotPanics(t, func() { pe.Forward(8) })

	assert.Panics(t, func() { NewPositionalEncoding(backend, 0, 8) })
}
