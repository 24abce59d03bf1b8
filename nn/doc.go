// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers the flow and text
// components are assembled from.
//
// # Overview
//
// This package contains:
//   - Projections: LinearNorm, Conv1d, ConvNorm
//   - Sequence blocks: DDSConv, TextResidualBlock, ResBlock1, DSResBlock
//   - Normalization: ChannelNorm
//   - Lookup and position: Embedding, PositionalEncoding
//   - Activations: GELU, SiLU, LeakyReLU
//   - Initialization: Xavier, XavierGain, Uniform, Normal, Zeros, Ones
//   - Plumbing: Parameter, Module, state dict helpers
//
// # Basic Usage
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    conv := nn.NewDDSConv(backend, nn.DDSConvConfig{
//	        Channels:   192,
//	        KernelSize: 5,
//	        Layers:     3,
//	    })
//
//	    // x is [batch, channels, time]; mask is [batch, 1, time].
//	    y := conv.Forward(x, mask, nil)
//	}
//
// # Masks
//
// Sequence layers take an optional [batch, 1, time] zero/one mask and
// keep padded positions at zero. A nil mask means every position is
// valid.
//
// # State Dicts
//
// Every layer with parameters exposes StateDict and LoadStateDict over
// dotted names, so composite modules nest cleanly and checkpoints move
// between architectures that share a layout.
package nn
