// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package flow

import (
	"github.com/voxflow-ml/voxflow/internal/flow"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Transform is a bijection over [batch, channel, time] tensors. Forward
// returns the transformed tensor and the [batch] log-determinant of the
// Jacobian; Inverse reconstructs the input exactly.
type Transform[B tensor.Backend] = flow.Transform[B]

// Chain composes transforms in declared order.
type Chain[B tensor.Backend] = flow.Chain[B]

// NewChain creates a Chain from the given transforms.
func NewChain[B tensor.Backend](transforms ...Transform[B]) *Chain[B] {
	return flow.NewChain(transforms...)
}

// Log maps strictly positive inputs to log space.
type Log[B tensor.Backend] = flow.Log[B]

// NewLog creates a Log transform. It has no parameters.
func NewLog[B tensor.Backend]() *Log[B] {
	return flow.NewLog[B]()
}

// ElementwiseAffine scales and shifts each channel with learned
// per-channel parameters.
type ElementwiseAffine[B tensor.Backend] = flow.ElementwiseAffine[B]

// NewElementwiseAffine creates an identity-initialized affine transform
// over the given channel count.
func NewElementwiseAffine[B tensor.Backend](backend B, channels int) *ElementwiseAffine[B] {
	return flow.NewElementwiseAffine(backend, channels)
}

// Flip reverses the channel axis. Paired with coupling transforms it
// lets every channel take a turn being transformed.
type Flip[B tensor.Backend] = flow.Flip[B]

// NewFlip creates a Flip transform. It has no parameters.
func NewFlip[B tensor.Backend]() *Flip[B] {
	return flow.NewFlip[B]()
}

// ConvFlowConfig configures a ConvFlow coupling transform.
type ConvFlowConfig = flow.ConvFlowConfig

// ConvFlow is a coupling transform that leaves the first half of the
// channels untouched and passes the second half through a monotone
// rational-quadratic spline whose parameters are predicted from the
// first half by a convolutional head.
type ConvFlow[B tensor.Backend] = flow.ConvFlow[B]

// NewConvFlow creates the coupling transform. A fresh transform starts
// near the identity.
func NewConvFlow[B tensor.Backend](backend B, cfg ConvFlowConfig) *ConvFlow[B] {
	return flow.NewConvFlow(backend, cfg)
}

// ChainModelType is the model type recorded in checkpoints written by
// Save.
const ChainModelType = flow.ChainModelType

// SaveOptions controls checkpoint serialization.
type SaveOptions = flow.SaveOptions

// Save writes the transform's state dict to a checkpoint file at path.
func Save[B tensor.Backend](t Transform[B], path string, opts SaveOptions) error {
	return flow.Save(t, path, opts)
}

// Load restores the transform's state dict from the checkpoint at path.
// The transform must be structurally identical to the one saved.
func Load[B tensor.Backend](backend B, t Transform[B], path string) error {
	return flow.Load(backend, t, path)
}
