// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Projections

// LinearNormConfig configures a LinearNorm layer. Zero InitGain means 1;
// bias is on unless NoBias is set.
type LinearNormConfig = nn.LinearNormConfig

// LinearNorm is a Xavier-initialized linear projection over the trailing
// feature axis. It accepts [time, features] or [batch, time, features].
type LinearNorm[B tensor.Backend] = nn.LinearNorm[B]

// NewLinearNorm creates the layer with Xavier weights and zero bias.
//
// Example:
//
//	head := nn.NewLinearNorm(backend, nn.LinearNormConfig{
//	    InFeatures:  192,
//	    OutFeatures: 384,
//	})
func NewLinearNorm[B tensor.Backend](backend B, cfg LinearNormConfig) *LinearNorm[B] {
	return nn.NewLinearNorm(backend, cfg)
}

// Conv1dConfig configures a Conv1d layer.
type Conv1dConfig = nn.Conv1dConfig

// Conv1d is a 1-D convolution over [batch, channels, time] input,
// supporting stride, dilation, groups and symmetric zero padding.
type Conv1d[B tensor.Backend] = nn.Conv1d[B]

// NewConv1d creates the convolution with Xavier-initialized weights.
func NewConv1d[B tensor.Backend](backend B, cfg Conv1dConfig) *Conv1d[B] {
	return nn.NewConv1d(backend, cfg)
}

// ConvNormConfig configures a ConvNorm layer.
type ConvNormConfig = nn.ConvNormConfig

// ConvNorm is a gain-aware Xavier-initialized 1-D convolution wrapper.
// By default it pads to preserve sequence length, which requires an odd
// kernel; it can transpose the last two axes around the convolution for
// [batch, time, channels] callers.
type ConvNorm[B tensor.Backend] = nn.ConvNorm[B]

// NewConvNorm creates the wrapper.
func NewConvNorm[B tensor.Backend](backend B, cfg ConvNormConfig) *ConvNorm[B] {
	return nn.NewConvNorm(backend, cfg)
}

// Normalization

// ChannelNorm normalizes [batch, channel, time] activations across the
// channel axis at every time step, with a learned per-channel gain and
// bias.
type ChannelNorm[B tensor.Backend] = nn.ChannelNorm[B]

// NewChannelNorm creates the layer with gain one and bias zero.
func NewChannelNorm[B tensor.Backend](backend B, channels int) *ChannelNorm[B] {
	return nn.NewChannelNorm(backend, channels)
}

// Sequence stacks

// DDSConvConfig configures a dilated depth-separable convolution stack.
type DDSConvConfig = nn.DDSConvConfig

// DDSConv is a stack of depth-separable convolution layers with
// exponentially growing dilation and residual connections. An optional
// conditioning tensor is added before the first layer.
type DDSConv[B tensor.Backend] = nn.DDSConv[B]

// NewDDSConv creates the stack. The kernel size must be odd.
//
// Example:
//
//	conv := nn.NewDDSConv(backend, nn.DDSConvConfig{
//	    Channels:   192,
//	    KernelSize: 5,
//	    Layers:     3,
//	})
//	y := conv.Forward(x, mask, nil)
func NewDDSConv[B tensor.Backend](backend B, cfg DDSConvConfig) *DDSConv[B] {
	return nn.NewDDSConv(backend, cfg)
}

// Lookup and position

// Embedding maps int32 token ids [batch, time] to dense vectors
// [batch, time, dim].
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates the table with N(0, dim^-1) init.
func NewEmbedding[B tensor.Backend](backend B, vocabSize, dim int) *Embedding[B] {
	return nn.NewEmbedding(backend, vocabSize, dim)
}

// PositionalEncoding holds a sinusoidal position table computed once at
// construction; Forward(seqLen) returns the first seqLen rows shaped
// [1, seqLen, dim].
type PositionalEncoding[B tensor.Backend] = nn.PositionalEncoding[B]

// NewPositionalEncoding precomputes the table for positions [0, maxLen).
func NewPositionalEncoding[B tensor.Backend](backend B, dim, maxLen int) *PositionalEncoding[B] {
	return nn.NewPositionalEncoding(backend, dim, maxLen)
}
