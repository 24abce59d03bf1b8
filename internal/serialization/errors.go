package serialization

import (
	"errors"
	"fmt"
)

// Sentinel errors for format violations.
var (
	ErrBadMagic       = errors.New("not a .vxf file: bad magic bytes")
	ErrVersion        = errors.New("unsupported format version")
	ErrChecksum       = errors.New("payload checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge = errors.New("header exceeds maximum size")
	ErrOutOfBounds    = errors.New("tensor extends beyond payload")
)

// ValidationError reports a specific header validation failure.
type ValidationError struct {
	Type    string // e.g. "offset_overlap", "out_of_bounds", "invalid_name"
	Tensor  string // primary tensor name involved
	Tensor2 string // secondary tensor name, set for overlap errors
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
