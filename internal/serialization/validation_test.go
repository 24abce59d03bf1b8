package serialization

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateTensorOffsetsValid verifies that back-to-back regions pass.
func TestValidateTensorOffsetsValid(t *testing.T) {
	tensors := []TensorMeta{
		{Name: "0.m", Offset: 0, Size: 100},
		{Name: "0.logs", Offset: 100, Size: 200},
		{Name: "2.pre.weight", Offset: 300, Size: 150},
	}

	if err := ValidateTensorOffsets(tensors, 500); err != nil {
		t.Errorf("Expected no error for valid tensors, got: %v", err)
	}
}

// TestValidateTensorOffsetsOverlap detects overlapping regions.
func TestValidateTensorOffsetsOverlap(t *testing.T) {
	tests := []struct {
		name        string
		tensors     []TensorMeta
		payloadSize int64
		wantErr     bool
	}{
		{
			name: "complete overlap",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 50, Size: 100},
			},
			payloadSize: 200,
			wantErr:     true,
		},
		{
			name: "overlap by one byte",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 99, Size: 100},
			},
			payloadSize: 200,
			wantErr:     true,
		},
		{
			name: "exact boundary",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 100},
				{Name: "b", Offset: 100, Size: 100},
			},
			payloadSize: 200,
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.payloadSize)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTensorOffsets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Expected ValidationError, got %T", err)
				}
				if verr.Type != "offset_overlap" {
					t.Errorf("Expected offset_overlap, got %s", verr.Type)
				}
			}
		})
	}
}

// TestValidateTensorOffsetsBounds detects regions past the payload and
// negative fields.
func TestValidateTensorOffsetsBounds(t *testing.T) {
	tests := []struct {
		name     string
		meta     TensorMeta
		wantType string
	}{
		{
			name:     "extends beyond payload",
			meta:     TensorMeta{Name: "a", Offset: 100, Size: 200},
			wantType: "out_of_bounds",
		},
		{
			name:     "starts beyond payload",
			meta:     TensorMeta{Name: "a", Offset: 1000, Size: 100},
			wantType: "out_of_bounds",
		},
		{
			name:     "negative offset",
			meta:     TensorMeta{Name: "a", Offset: -100, Size: 100},
			wantType: "negative_offset",
		},
		{
			name:     "negative size",
			meta:     TensorMeta{Name: "a", Offset: 0, Size: -100},
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets([]TensorMeta{tt.meta}, 250)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if verr.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, verr.Type)
			}
		})
	}
}

// TestValidateTensorNameRejected rejects path-like and malformed names.
func TestValidateTensorNameRejected(t *testing.T) {
	badNames := []string{
		"../../../etc/passwd",
		"..\\..\\windows\\system32",
		"tensor/../secret",
		"layer/0/weight",
		"model\\layer\\weight",
		"tensor\x00hidden",
		strings.Repeat("a", MaxTensorNameLen+1),
	}

	for _, name := range badNames {
		t.Run(name, func(t *testing.T) {
			err := ValidateTensorName(name)
			if err == nil {
				t.Fatalf("Expected error for name %q, got nil", name)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if verr.Type != "invalid_name" && verr.Type != "name_too_long" {
				t.Errorf("Expected invalid_name or name_too_long, got %s", verr.Type)
			}
		})
	}
}

// TestValidateTensorNameAccepted accepts state dict keys.
func TestValidateTensorNameAccepted(t *testing.T) {
	validNames := []string{
		"weight",
		"0.m",
		"0.logs",
		"2.convs.sep_convs.0.weight",
		"2.convs.norms_2.1.beta",
		"encoder.blocks.3.gamma",
	}

	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			if err := ValidateTensorName(name); err != nil {
				t.Errorf("Expected no error for name %q, got: %v", name, err)
			}
		})
	}
}

// TestValidateHeaderLevels verifies which checks each level performs.
func TestValidateHeaderLevels(t *testing.T) {
	overlapping := Header{
		Tensors: []TensorMeta{
			{Name: "a", DType: DTypeFloat32, Offset: 0, Size: 100},
			{Name: "b", DType: DTypeFloat32, Offset: 50, Size: 100},
		},
	}

	if err := ValidateHeader(&overlapping, 200, ValidationStrict); err == nil {
		t.Error("Strict validation should reject overlapping offsets")
	}
	if err := ValidateHeader(&overlapping, 200, ValidationNormal); err != nil {
		t.Errorf("Normal validation skips offset checks, got: %v", err)
	}

	malicious := Header{
		Tensors: []TensorMeta{
			{Name: "../../../etc/passwd", DType: DTypeFloat32, Offset: -1000, Size: -1000},
		},
	}
	if err := ValidateHeader(&malicious, 100, ValidationNone); err != nil {
		t.Errorf("ValidationNone skips all checks, got: %v", err)
	}
	if err := ValidateHeader(&malicious, 100, ValidationNormal); err == nil {
		t.Error("Normal validation should reject a path-like name")
	}
}

// TestValidateHeaderUnknownDtype rejects dtypes the loader cannot
// materialize.
func TestValidateHeaderUnknownDtype(t *testing.T) {
	header := Header{
		Tensors: []TensorMeta{
			{Name: "weight", DType: "complex128", Offset: 0, Size: 64},
		},
	}

	err := ValidateHeader(&header, 64, ValidationNormal)
	if err == nil {
		t.Fatal("Expected error for unknown dtype, got nil")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if verr.Type != "unknown_dtype" {
		t.Errorf("Expected unknown_dtype, got %s", verr.Type)
	}
}

// TestValidationErrorMessages verifies error message formatting.
func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name: "single tensor",
			err: &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  "0.logs",
				Details: "offset 100 + size 200 > payload_size 250",
			},
			expected: `out_of_bounds: tensor "0.logs": offset 100 + size 200 > payload_size 250`,
		},
		{
			name: "two tensors",
			err: &ValidationError{
				Type:    "offset_overlap",
				Tensor:  "a",
				Tensor2: "b",
				Details: "regions [0-100] and [50-150] overlap",
			},
			expected: `offset_overlap: tensors "a" and "b": regions [0-100] and [50-150] overlap`,
		},
		{
			name: "no tensor",
			err: &ValidationError{
				Type:    "too_many_tensors",
				Details: "got 100001, max 100000",
			},
			expected: "too_many_tensors: got 100001, max 100000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := tt.err.Error(); actual != tt.expected {
				t.Errorf("Error message mismatch\nExpected: %s\nGot:      %s", tt.expected, actual)
			}
		})
	}
}

// FuzzValidateTensorName ensures name validation never panics.
func FuzzValidateTensorName(f *testing.F) {
	f.Add("0.pre.weight")
	f.Add("../malicious")
	f.Add("path/to/tensor")
	f.Add(strings.Repeat("a", MaxTensorNameLen))
	f.Add("\x00null_byte")
	f.Add("..\\windows")

	f.Fuzz(func(_ *testing.T, name string) {
		_ = ValidateTensorName(name)
	})
}

// FuzzValidateTensorOffsets ensures offset validation never panics.
func FuzzValidateTensorOffsets(f *testing.F) {
	f.Add(int64(0), int64(100), int64(200))
	f.Add(int64(-100), int64(50), int64(1000))
	f.Add(int64(100), int64(-50), int64(1000))

	f.Fuzz(func(_ *testing.T, offset, size, payloadSize int64) {
		tensors := []TensorMeta{
			{Name: "fuzz_tensor", Offset: offset, Size: size},
		}
		_ = ValidateTensorOffsets(tensors, payloadSize)
	})
}
