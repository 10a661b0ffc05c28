package memory

import (
	"github.com/tetratelabs/wazero/api"

	wasmbridge "github.com/wippyai/wasm-bridge"
	"github.com/wippyai/wasm-bridge/errors"
)

// WrapMemory wraps a wazero api.Memory to implement wasmbridge.Memory.
func WrapMemory(mem api.Memory) wasmbridge.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the wasmbridge.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Read reads bytes from memory. The returned slice aliases linear memory.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseRuntime, "memory", offset, length, m.Mem.Size())
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseRuntime, "memory", offset, uint32(len(data)), m.Mem.Size())
	}
	return nil
}

// Size returns the current size of linear memory in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}
