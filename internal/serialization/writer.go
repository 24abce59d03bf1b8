package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/voxflow-ml/voxflow/internal/tensor"
	"github.com/x448/float16"
)

const voxflowVersion = "0.3.0" // Current Voxflow version

// WriterOptions configures how a Writer encodes payloads.
type WriterOptions struct {
	Float16 bool // store float32 tensors as float16, halving the payload
}

// Writer writes model parameters in .vxf format.
type Writer struct {
	file   *os.File
	opts   WriterOptions
	closed bool
}

// NewWriter creates a .vxf file writer with full-precision payloads.
func NewWriter(path string) (*Writer, error) {
	return NewWriterWithOptions(path, WriterOptions{})
}

// NewWriterWithOptions creates a .vxf file writer with custom options.
func NewWriterWithOptions(path string, opts WriterOptions) (*Writer, error) {
	//nolint:gosec // G304: checkpoint paths come from the caller.
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{file: file, opts: opts}, nil
}

// WriteStateDict writes a state dictionary keyed by parameter name.
func (w *Writer) WriteStateDict(state map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	return w.WriteStateDictWithHeader(state, Header{ModelType: modelType, Metadata: metadata})
}

// WriteStateDictWithHeader writes a state dictionary with caller-supplied
// header fields. The format version, library version, and tensor table are
// always overwritten; CreatedAt is filled in when zero.
func (w *Writer) WriteStateDictWithHeader(state map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	return encode(w.file, state, header, w.opts)
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteTo serializes a state dictionary to an io.Writer with full-precision
// payloads. Useful for buffers or network connections.
func WriteTo(dst io.Writer, state map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	return encode(dst, state, Header{ModelType: modelType, Metadata: metadata}, WriterOptions{})
}

// encode emits one complete .vxf stream: fixed header, JSON header,
// alignment padding, payload. Tensors are packed in name order so the same
// state dict always produces the same payload and checksum.
func encode(dst io.Writer, state map[string]*tensor.RawTensor, header Header, opts WriterOptions) error {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersion
	header.VoxflowVersion = voxflowVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}
	header.Tensors = make([]TensorMeta, 0, len(names))

	var payload []byte
	for _, name := range names {
		raw := state[name]
		data, dtype := tensorBytes(raw, opts)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtype,
			Shape:  []int(raw.Shape()),
			Offset: int64(len(payload)),
			Size:   int64(len(data)),
		})
		payload = append(payload, data...)
	}

	checksum := Checksum(payload)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)

	flags := uint32(0)
	if opts.Float16 {
		flags |= FlagFloat16
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)

	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(payload)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := dst.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := dst.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	jsonEnd := FixedHeaderSize + int64(len(headerJSON))
	if padding := alignUp(jsonEnd) - jsonEnd; padding > 0 {
		if _, err := dst.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := dst.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	return nil
}

// tensorBytes returns the payload encoding and metadata dtype for one
// tensor. Float32 narrows to float16 when requested; other dtypes are
// stored verbatim.
func tensorBytes(raw *tensor.RawTensor, opts WriterOptions) ([]byte, string) {
	if opts.Float16 && raw.DType() == tensor.Float32 {
		src := raw.AsFloat32()
		out := make([]byte, len(src)*2)
		for i, v := range src {
			binary.LittleEndian.PutUint16(out[i*2:], float16.Fromfloat32(v).Bits())
		}
		return out, DTypeFloat16
	}
	return raw.Data(), dtypeToString(raw.DType())
}
