package memory

import (
	"github.com/wippyai/wasm-bridge/errors"
)

// Bytes is a fixed-size memory backed by a Go byte slice.
type Bytes []byte

// Read returns the bytes at [offset, offset+length). The result aliases b.
func (b Bytes) Read(offset uint32, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b)) {
		return nil, errors.OutOfBounds(errors.PhaseRuntime, "memory", offset, length, b.Size())
	}
	return b[offset:end:end], nil
}

// Write copies data into b starting at offset.
func (b Bytes) Write(offset uint32, data []byte) error {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(b)) {
		return errors.OutOfBounds(errors.PhaseRuntime, "memory", offset, uint32(len(data)), b.Size())
	}
	copy(b[offset:end], data)
	return nil
}

// Size returns len(b).
func (b Bytes) Size() uint32 {
	return uint32(len(b))
}
