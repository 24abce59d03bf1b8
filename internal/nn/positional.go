package nn

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// PositionalEncoding holds a sinusoidal position table computed once at
// construction. The table is immutable; Forward hands out copies, never
// views, so callers cannot corrupt it.
type PositionalEncoding[B tensor.Backend] struct {
	backend B
	dim     int
	maxLen  int
	table   *tensor.Tensor[float32, B]
}

// NewPositionalEncoding precomputes the table for positions [0, maxLen).
// Even feature indices carry sin(pos / 10000^(2i/dim)), odd indices the
// matching cos.
func NewPositionalEncoding[B tensor.Backend](backend B, dim, maxLen int) *PositionalEncoding[B] {
	if dim <= 0 || maxLen <= 0 {
		panic(fmt.Sprintf("positional: invalid dim=%d maxLen=%d", dim, maxLen))
	}

	table := tensor.Zeros[float32](backend, tensor.Shape{maxLen, dim})
	data := table.Data()
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < dim; i++ {
			exponent := float64(2*(i/2)) / float64(dim)
			angle := float64(pos) / math.Pow(10000, exponent)
			if i%2 == 0 {
				data[pos*dim+i] = float32(math.Sin(angle))
			} else {
				data[pos*dim+i] = float32(math.Cos(angle))
			}
		}
	}

	return &PositionalEncoding[B]{backend: backend, dim: dim, maxLen: maxLen, table: table}
}

// Forward returns the first seqLen positions as [1, seqLen, dim], shaped
// to broadcast over a [batch, seqLen, dim] activation.
func (p *PositionalEncoding[B]) Forward(seqLen int) *tensor.Tensor[float32, B] {
	if seqLen <= 0 || seqLen > p.maxLen {
		panic(fmt.Sprintf("positional: seqLen %d outside (0, %d]", seqLen, p.maxLen))
	}

	out := tensor.Zeros[float32](p.backend, tensor.Shape{1, seqLen, p.dim})
	copy(out.Data(), p.table.Data()[:seqLen*p.dim])
	return out
}

// Dim returns the feature dimension.
func (p *PositionalEncoding[B]) Dim() int {
	return p.dim
}

// MaxLen returns the largest supported sequence length.
func (p *PositionalEncoding[B]) MaxLen() int {
	return p.maxLen
}
