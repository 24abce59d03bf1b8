package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voxflow-ml/voxflow/internal/tensor"
)

// MmapReader provides memory-mapped access to .vxf files. Only the header
// is parsed up front; tensor payloads are faulted in on demand through the
// OS page cache, which keeps opening large checkpoints cheap.
//
// The payload checksum is not verified on open. Call VerifyChecksum when
// the file comes from an untrusted source.
type MmapReader struct {
	file        *os.File
	data        []byte // mapped region, read-only
	size        int64
	header      Header
	flags       uint32
	dataOffset  int64
	payloadSize int64
	checksum    [32]byte
	closed      bool
}

// NewMmapReader memory-maps a .vxf file and parses its header.
// Always call Close to unmap the file.
func NewMmapReader(path string) (*MmapReader, error) {
	//nolint:gosec // G304: checkpoint paths come from the caller.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &MmapReader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	return r, nil
}

// parseHeader parses the fixed and JSON headers from the mapped region.
func (r *MmapReader) parseHeader() error {
	if r.size < FixedHeaderSize {
		return fmt.Errorf("file too small: %d bytes, need at least %d", r.size, FixedHeaderSize)
	}

	if string(r.data[0:4]) != MagicBytes {
		return ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(r.data[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersion, version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(r.data[8:12])

	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	payloadSize := binary.LittleEndian.Uint64(r.data[24:32])
	if payloadSize > 1<<62 {
		return fmt.Errorf("payload size too large: %d", payloadSize)
	}
	r.payloadSize = int64(payloadSize)

	copy(r.checksum[:], r.data[ChecksumOffset:ChecksumOffset+ChecksumSize])

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize.
	jsonEnd := FixedHeaderSize + int64(headerSize)
	if jsonEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", jsonEnd, r.size)
	}
	if err := json.Unmarshal(r.data[FixedHeaderSize:jsonEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = alignUp(jsonEnd)
	if r.dataOffset+r.payloadSize > r.size {
		return fmt.Errorf("file truncated: %d bytes, payload needs %d", r.size, r.dataOffset+r.payloadSize)
	}

	if err := ValidateHeader(&r.header, r.payloadSize, ValidationStrict); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	return nil
}

// VerifyChecksum hashes the mapped payload and compares it against the
// stored digest. This faults in the whole payload.
func (r *MmapReader) VerifyChecksum() error {
	if r.closed {
		return fmt.Errorf("reader is closed")
	}
	if Checksum(r.data[r.dataOffset:r.dataOffset+r.payloadSize]) != r.checksum {
		return ErrChecksum
	}
	return nil
}

// Close unmaps and closes the file.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Header returns the file header.
func (r *MmapReader) Header() Header {
	return r.header
}

// Flags returns the flags bitfield from the fixed header.
func (r *MmapReader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 digest of the payload.
func (r *MmapReader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames returns the names of all tensors in the file.
func (r *MmapReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns metadata for a named tensor.
func (r *MmapReader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// TensorData returns a zero-copy view of a tensor's payload bytes.
// The slice is valid only while the reader is open and must not be
// written to.
func (r *MmapReader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + meta.Offset
	end := start + meta.Size
	if meta.Offset < 0 || meta.Size < 0 || end > r.dataOffset+r.payloadSize {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > payload_size %d",
			ErrOutOfBounds, name, meta.Offset, meta.Size, r.payloadSize)
	}

	return r.data[start:end], nil
}

// TensorDataCopy returns a writable copy of a tensor's payload bytes.
func (r *MmapReader) TensorDataCopy(name string) ([]byte, error) {
	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// LoadTensor loads a named tensor onto the given device, widening float16
// payloads to float32.
func (r *MmapReader) LoadTensor(name string, device tensor.Device) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}
	return materialize(meta, data, device)
}

// ReadStateDict loads every tensor into a state dictionary.
func (r *MmapReader) ReadStateDict(device tensor.Device) (map[string]*tensor.RawTensor, error) {
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
