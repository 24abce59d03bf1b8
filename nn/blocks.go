// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// ResBlock is the interface shared by the residual conv blocks, so
// decoder stacks can mix the two variants.
type ResBlock[B tensor.Backend] = nn.ResBlock[B]

// ResBlock1Config configures a ResBlock1.
type ResBlock1Config = nn.ResBlock1Config

// ResBlock1 is a residual stack of weight-normalized dilated convolutions
// paired with dilation-1 convolutions, with LeakyReLU pre-activations.
type ResBlock1[B tensor.Backend] = nn.ResBlock1[B]

// NewResBlock1 creates the block.
//
// Example:
//
//	blk := nn.NewResBlock1(backend, nn.ResBlock1Config{
//	    Channels:   128,
//	    KernelSize: 3,
//	    Dilations:  []int{1, 3, 5},
//	})
func NewResBlock1[B tensor.Backend](backend B, cfg ResBlock1Config) *ResBlock1[B] {
	return nn.NewResBlock1(backend, cfg)
}

// DSResBlock adapts a depth-separable convolution stack to the ResBlock
// interface.
type DSResBlock[B tensor.Backend] = nn.DSResBlock[B]

// NewDSResBlock creates the block with three conv layers and no dropout.
func NewDSResBlock[B tensor.Backend](backend B, channels, kernelSize int) *DSResBlock[B] {
	return nn.NewDSResBlock(backend, channels, kernelSize)
}

// TextResidualBlock refines text-encoder activations with repeated
// DDSConv, SiLU and ChannelNorm units under one outer residual
// connection.
type TextResidualBlock[B tensor.Backend] = nn.TextResidualBlock[B]

// NewTextResidualBlock creates a block with the given number of units.
func NewTextResidualBlock[B tensor.Backend](backend B, channels, kernelSize, units int) *TextResidualBlock[B] {
	return nn.NewTextResidualBlock(backend, channels, kernelSize, units)
}
