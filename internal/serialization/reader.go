package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/voxflow-ml/voxflow/internal/tensor"
	"github.com/x448/float16"
)

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // skip payload checksum verification on open
	ValidationLevel        ValidationLevel // header validation strictness
}

// Reader reads .vxf files through seekable file I/O.
type Reader struct {
	file        *os.File
	header      Header
	flags       uint32
	dataOffset  int64 // absolute offset where the payload starts
	payloadSize int64
	checksum    [32]byte
	opts        ReaderOptions
	closed      bool
}

// NewReader opens a .vxf file with strict validation and checksum
// verification.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// NewReaderWithOptions opens a .vxf file with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: checkpoint paths come from the caller.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}

	if err := r.parseHeader(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() < r.dataOffset+r.payloadSize {
		_ = file.Close()
		return nil, fmt.Errorf("file truncated: %d bytes, payload needs %d", info.Size(), r.dataOffset+r.payloadSize)
	}

	if err := ValidateHeader(&r.header, r.payloadSize, opts.ValidationLevel); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !opts.SkipChecksumValidation {
		if err := r.verifyChecksum(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return r, nil
}

// parseHeader reads the fixed header and the JSON header.
func (r *Reader) parseHeader() error {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixed); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersion, version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(fixed[8:12])

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	payloadSize := binary.LittleEndian.Uint64(fixed[24:32])
	if payloadSize > 1<<62 {
		return fmt.Errorf("payload size too large: %d", payloadSize)
	}
	r.payloadSize = int64(payloadSize)

	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize.
	r.dataOffset = alignUp(FixedHeaderSize + int64(headerSize))

	return nil
}

// verifyChecksum streams the payload through SHA-256 and compares against
// the stored digest.
func (r *Reader) verifyChecksum() error {
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to payload: %w", err)
	}
	computed, err := ChecksumReader(io.LimitReader(r.file, r.payloadSize))
	if err != nil {
		return fmt.Errorf("failed to read payload for checksum: %w", err)
	}
	if computed != r.checksum {
		return ErrChecksum
	}
	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the free-form metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Flags returns the flags bitfield from the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// TensorNames returns the names of all tensors in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns metadata for a named tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// ReadTensorData reads the raw payload bytes of a named tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > r.payloadSize {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > payload_size %d",
			ErrOutOfBounds, name, meta.Offset, meta.Size, r.payloadSize)
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor data: %w", err)
	}
	data := make([]byte, meta.Size)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	return data, nil
}

// LoadTensor loads a single named tensor onto the given device.
func (r *Reader) LoadTensor(name string, device tensor.Device) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	return materialize(meta, data, device)
}

// ReadStateDict loads every tensor into a state dictionary.
func (r *Reader) ReadStateDict(device tensor.Device) (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	state := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name, device)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		state[meta.Name] = raw
	}
	return state, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadFrom reads one complete .vxf stream from an io.Reader. The payload
// checksum is always verified.
func ReadFrom(src io.Reader, device tensor.Device) (map[string]*tensor.RawTensor, Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(src, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return nil, Header{}, ErrBadMagic
	}
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return nil, Header{}, fmt.Errorf("%w: got %d, want %d", ErrVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return nil, Header{}, ErrHeaderTooLarge
	}
	payloadSize := binary.LittleEndian.Uint64(fixed[24:32])
	if payloadSize > 1<<62 {
		return nil, Header{}, fmt.Errorf("payload size too large: %d", payloadSize)
	}
	var checksum [32]byte
	copy(checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(src, headerJSON); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize.
	jsonEnd := FixedHeaderSize + int64(headerSize)
	if padding := alignUp(jsonEnd) - jsonEnd; padding > 0 {
		if _, err := io.CopyN(io.Discard, src, padding); err != nil {
			return nil, Header{}, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(src, payload); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read payload: %w", err)
	}
	if Checksum(payload) != checksum {
		return nil, Header{}, ErrChecksum
	}

	if err := ValidateHeader(&header, int64(len(payload)), ValidationStrict); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	state := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for i := range header.Tensors {
		meta := &header.Tensors[i]
		raw, err := materialize(meta, payload[meta.Offset:meta.Offset+meta.Size], device)
		if err != nil {
			return nil, Header{}, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		state[meta.Name] = raw
	}

	return state, header, nil
}

// materialize turns one tensor's payload bytes into a RawTensor. Float16
// payloads are widened to float32; everything else is copied verbatim.
func materialize(meta *TensorMeta, data []byte, device tensor.Device) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("unsupported dtype: %s", meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", meta.Name, err)
	}
	want, _ := storedSize(meta.DType, shape.NumElements())
	if int64(len(data)) != want {
		return nil, fmt.Errorf("tensor %s: payload is %d bytes, want %d", meta.Name, len(data), want)
	}

	raw, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}

	if meta.DType == DTypeFloat16 {
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
		}
		return raw, nil
	}

	copy(raw.Data(), data)
	return raw, nil
}
