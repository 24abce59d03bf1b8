// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/voxflow-ml/voxflow/internal/nn"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Module is the interface for layers mapping one tensor to one tensor.
// Layers with extra inputs (masks, conditioning) define their own Forward
// signatures and satisfy only the parameter-access side of this contract.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// State dict helpers

// LoadEntry copies state[key] into p, reporting missing keys and shape
// mismatches.
func LoadEntry[B tensor.Backend](state map[string]*tensor.Tensor[float32, B], key string, p *Parameter[B]) error {
	return nn.LoadEntry(state, key, p)
}

// PrefixStateDict merges a child state dict into dst under a dotted prefix.
func PrefixStateDict[B tensor.Backend](dst map[string]*tensor.Tensor[float32, B], prefix string, src map[string]*tensor.Tensor[float32, B]) {
	nn.PrefixStateDict(dst, prefix, src)
}

// SubStateDict extracts the entries under a dotted prefix, stripping it.
func SubStateDict[B tensor.Backend](state map[string]*tensor.Tensor[float32, B], prefix string) map[string]*tensor.Tensor[float32, B] {
	return nn.SubStateDict(state, prefix)
}

// Initialization

// Padding returns the symmetric padding that keeps sequence length under
// a dilated convolution with an odd kernel.
func Padding(kernelSize, dilation int) int {
	return nn.Padding(kernelSize, dilation)
}

// Xavier fills t with Xavier-uniform values for its [in, out] or
// [out, in, kernel] shape.
func Xavier[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	nn.Xavier(t)
}

// XavierGain is Xavier with the bounds scaled by gain.
func XavierGain[B tensor.Backend](t *tensor.Tensor[float32, B], gain float64) {
	nn.XavierGain(t, gain)
}

// Uniform fills t with values drawn uniformly from [low, high).
func Uniform[B tensor.Backend](t *tensor.Tensor[float32, B], low, high float64) {
	nn.Uniform(t, low, high)
}

// Normal fills t with values drawn from N(mean, std^2).
func Normal[B tensor.Backend](t *tensor.Tensor[float32, B], mean, std float64) {
	nn.Normal(t, mean, std)
}

// Zeros fills t with zeros.
func Zeros[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	nn.Zeros(t)
}

// Ones fills t with ones.
func Ones[B tensor.Backend](t *tensor.Tensor[float32, B]) {
	nn.Ones(t)
}

// Activations

// GELU applies the Gaussian error linear unit elementwise.
func GELU[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.GELU(x)
}

// SiLU applies x * sigmoid(x) elementwise.
func SiLU[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.SiLU(x)
}

// LeakyReLU applies max(x, slope*x) elementwise.
func LeakyReLU[B tensor.Backend](x *tensor.Tensor[float32, B], slope float64) *tensor.Tensor[float32, B] {
	return nn.LeakyReLU(x, slope)
}

// Dropout zeroes elements with probability p during training and is the
// identity during inference.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout layer in inference mode.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	return nn.NewDropout[B](p)
}
