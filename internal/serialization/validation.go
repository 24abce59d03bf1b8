package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for untrusted files.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB JSON header
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// ValidationLevel controls how strictly a file header is checked.
type ValidationLevel int

const (
	// ValidationStrict performs all checks, including offset overlap scans.
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and counts but not offsets.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateTensorOffsets rejects negative, overlapping, or out-of-bounds
// tensor regions. Malformed offsets would otherwise let one tensor read
// another's bytes or run past the payload.
func ValidateTensorOffsets(tensors []TensorMeta, payloadSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > payloadSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > payload_size %d", t.Offset, t.Size, payloadSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that could be abused as paths or that
// exceed the length limit. State dict keys are dot-separated identifiers
// and never contain separators.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..'",
		}
	}

	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// ValidateHeader checks a parsed header at the given strictness level.
func ValidateHeader(h *Header, payloadSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if _, ok := storedSize(t.DType, 1); !ok {
			return &ValidationError{
				Type:    "unknown_dtype",
				Tensor:  t.Name,
				Details: fmt.Sprintf("dtype %q", t.DType),
			}
		}
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, payloadSize); err != nil {
			return err
		}
	}

	return nil
}
