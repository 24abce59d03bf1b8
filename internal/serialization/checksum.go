package serialization

import (
	"crypto/sha256"
	"io"
)

// Checksum computes the SHA-256 digest of data.
func Checksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ChecksumReader computes the SHA-256 digest of everything read from r,
// without buffering the whole stream in memory.
func ChecksumReader(r io.Reader) ([32]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
