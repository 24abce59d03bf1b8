package nn

import (
	"fmt"
	"math"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Embedding maps int32 token ids [batch, time] to dense vectors
// [batch, time, dim].
type Embedding[B tensor.Backend] struct {
	vocabSize int
	dim       int
	weight    *Parameter[B]
}

// NewEmbedding creates the table with N(0, dim^-1) init, the usual scale
// for embeddings that are later multiplied by sqrt(dim).
func NewEmbedding[B tensor.Backend](backend B, vocabSize, dim int) *Embedding[B] {
	if vocabSize <= 0 || dim <= 0 {
		panic(fmt.Sprintf("embedding: invalid vocabSize=%d dim=%d", vocabSize, dim))
	}

	weight := tensor.Zeros[float32](backend, tensor.Shape{vocabSize, dim})
	Normal(weight, 0, 1/math.Sqrt(float64(dim)))

	return &Embedding[B]{
		vocabSize: vocabSize,
		dim:       dim,
		weight:    NewParameter("weight", weight),
	}
}

// Forward gathers embeddings for the given token ids.
func (e *Embedding[B]) Forward(ids *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return tensor.Embedding(e.weight.Tensor(), ids)
}

// VocabSize returns the number of rows in the table.
func (e *Embedding[B]) VocabSize() int {
	return e.vocabSize
}

// Dim returns the embedding dimension.
func (e *Embedding[B]) Dim() int {
	return e.dim
}

// Parameters returns the embedding table.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.weight}
}

// StateDict returns the layer's named tensors.
func (e *Embedding[B]) StateDict() map[string]*tensor.Tensor[float32, B] {
	return map[string]*tensor.Tensor[float32, B]{"weight": e.weight.Tensor()}
}

// LoadStateDict restores the layer's tensors.
func (e *Embedding[B]) LoadStateDict(state map[string]*tensor.Tensor[float32, B]) error {
	return LoadEntry(state, "weight", e.weight)
}
