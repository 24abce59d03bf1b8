// Package nn provides neural network layers for sequence models: masked
// convolutions, channel normalization, residual stacks, and the small
// wrappers (linear and conv projections, embeddings, positional tables)
// a text-to-audio front end is assembled from.
//
// Layers are generic over the compute backend. Activations that need more
// than the core backend contract are discovered through capability
// interfaces; see activation.go.
package nn

import "github.com/voxflow-ml/voxflow/internal/tensor"

// Module is the interface for layers mapping one tensor to one tensor.
// Layers with extra inputs (masks, conditioning) define their own Forward
// signatures and satisfy only the parameter-access side of this contract.
type Module[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Parameters() []*Parameter[B]
}
