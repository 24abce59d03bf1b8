package serialization

import (
	"time"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "VOXF"
	FormatVersion   = 2    // v1 had no payload checksum and is no longer written or read
	FixedHeaderSize = 64   // 0x40 bytes before the JSON header
	HeaderAlignment = 64   // payload starts on a 64-byte boundary
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum position inside the fixed header
)

// Data type strings used in tensor metadata. Float16 is a storage-only
// encoding: such payloads are widened to float32 when loaded.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeFloat16 = "float16"
	DTypeInt32   = "int32"
)

// Flags for the .vxf format.
const (
	FlagFloat16     uint32 = 1 << 0 // float32 tensors stored as float16
	FlagHasMetadata uint32 = 1 << 1 // free-form metadata present
)

// Header is the JSON header of a .vxf file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	VoxflowVersion string            `json:"voxflow_version"` // library version that wrote the file
	ModelType      string            `json:"model_type"`      // e.g. "FlowChain", "TextEncoder"
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata"`
}

// TensorMeta describes one tensor in the payload.
type TensorMeta struct {
	Name   string `json:"name"`   // state dict key, e.g. "2.pre.weight"
	DType  string `json:"dtype"`  // one of the DType* strings
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the payload start
	Size   int64  `json:"size"`   // bytes in the payload
}

// alignUp rounds n up to the next multiple of HeaderAlignment.
func alignUp(n int64) int64 {
	return (n + HeaderAlignment - 1) / HeaderAlignment * HeaderAlignment
}

// dtypeToString converts tensor.DataType to its metadata string.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	default:
		return "unknown"
	}
}

// stringToDtype converts a metadata string to the in-memory tensor.DataType.
// Float16 maps to Float32 because payloads are widened on load.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32, DTypeFloat16:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	default:
		return 0, false
	}
}

// storedSize returns the payload byte count for n elements of the given
// metadata dtype.
func storedSize(dtype string, n int) (int64, bool) {
	switch dtype {
	case DTypeFloat16:
		return int64(n) * 2, true
	case DTypeFloat32, DTypeInt32:
		return int64(n) * 4, true
	case DTypeFloat64:
		return int64(n) * 8, true
	default:
		return 0, false
	}
}
