// Copyright 2025 The Voxflow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/voxflow-ml/voxflow/internal/backend/cpu"
	"github.com/voxflow-ml/voxflow/tensor"
)

// Backend is the pure Go CPU backend.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend sized to the machine.
//
// Example:
//
//	import (
//	    "github.com/voxflow-ml/voxflow/backend/cpu"
//	    "github.com/voxflow-ml/voxflow/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](backend, tensor.Shape{2, 3})
//	}
func New() *Backend {
	return internalcpu.New()
}
