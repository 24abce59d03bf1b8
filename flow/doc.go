// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

/*
Package flow provides invertible normalizing-flow transforms for
density modelling over [batch, channel, time] tensors.

Every transform is a bijection: Forward maps x to y and reports the
per-example log-determinant of the Jacobian, Inverse reconstructs x
from y exactly. Transforms compose through Chain, which applies members
in declared order, accumulates log-determinants, and inverts by walking
the sequence backwards.

# Building a Flow

A typical duration-style flow stacks an ElementwiseAffine base with
alternating ConvFlow couplings and Flip permutations:

	backend := cpu.New()
	chain := flow.NewChain[*cpu.Backend](
		flow.NewElementwiseAffine(backend, 2),
		flow.NewConvFlow(backend, flow.ConvFlowConfig{
			InChannels:     2,
			FilterChannels: 192,
			KernelSize:     3,
			Layers:         3,
		}),
		flow.NewFlip[*cpu.Backend](),
		flow.NewConvFlow(backend, flow.ConvFlowConfig{
			InChannels:     2,
			FilterChannels: 192,
			KernelSize:     3,
			Layers:         3,
		}),
		flow.NewFlip[*cpu.Backend](),
	)

	y, logdet := chain.Forward(x, mask, nil)
	back := chain.Inverse(y, mask, nil)

# Masks and Conditioning

All transforms accept an optional [batch, 1, time] mask of zeros and
ones marking valid time steps and an optional conditioning tensor.
Either may be nil. Masked positions contribute nothing to the
log-determinant and are zeroed in the output, so padded batches stay
exact. Conditioning reaches the transforms that use it (ConvFlow adds
it into the coupling head); the rest accept and discard it, which lets
a Chain pass one conditioning tensor to every member.

# Checkpoints

Save writes a chain's state dict to a checkpoint file, optionally
compressed to float16; Load restores it into a structurally identical
chain:

	err := flow.Save[*cpu.Backend](chain, "flow.vxf", flow.SaveOptions{Float16: true})
	...
	err = flow.Load(backend, fresh, "flow.vxf")

Transforms are addressed by position, so the chain being loaded must
declare the same members in the same order as the one saved.
*/
package flow
