package flow

import (
	"fmt"

	"github.com/voxflow-ml/voxflow/internal/serialization"
	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// ChainModelType is the model type stamped into checkpoint headers
// written by Save.
const ChainModelType = "FlowChain"

// SaveOptions configures checkpoint writing.
type SaveOptions struct {
	// Float16 stores float32 payloads in half precision. Loading widens
	// them back, so round trips lose a few mantissa bits per value.
	Float16 bool

	// Metadata is free-form key/value data stored in the header.
	Metadata map[string]string
}

// Save writes the transform's state dict to a checkpoint at path.
// Chains save their members under index-prefixed names, so the file can
// only be loaded back into the same architecture.
func Save[B tensor.Backend](t Transform[B], path string, opts SaveOptions) error {
	w, err := serialization.NewWriterWithOptions(path, serialization.WriterOptions{Float16: opts.Float16})
	if err != nil {
		return err
	}
	defer w.Close()

	state := t.StateDict()
	raw := make(map[string]*tensor.RawTensor, len(state))
	for name, param := range state {
		raw[name] = param.Raw()
	}
	if err := w.WriteStateDict(raw, ChainModelType, opts.Metadata); err != nil {
		return err
	}
	return w.Close()
}

// Load restores the transform's parameters from the checkpoint at path.
// The transform must already be constructed with the architecture the
// checkpoint was saved from; mismatches surface as missing-tensor errors.
func Load[B tensor.Backend](backend B, t Transform[B], path string) error {
	r, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	raw, err := r.ReadStateDict(backend.Device())
	if err != nil {
		return err
	}
	state := make(map[string]*tensor.Tensor[float32, B], len(raw))
	for name, rt := range raw {
		if rt.DType() != tensor.Float32 {
			return fmt.Errorf("tensor %s: checkpoint holds %s, want %s", name, rt.DType(), tensor.Float32)
		}
		state[name] = tensor.FromRaw[float32](backend, rt)
	}
	return t.LoadStateDict(state)
}
