package memory

import (
	wasmbridge "github.com/wippyai/wasm-bridge"
	"github.com/wippyai/wasm-bridge/errors"
)

// View gives read/write access to space A and space B.
type View struct {
	a wasmbridge.Memory
	b wasmbridge.Memory
}

// NewView pairs the calling module's memory (a) with the host module's memory (b).
func NewView(a, b wasmbridge.Memory) *View {
	return &View{a: a, b: b}
}

// Space returns the memory backing s, or nil for an unknown space.
func (v *View) Space(s wasmbridge.Space) wasmbridge.Memory {
	switch s {
	case wasmbridge.SpaceA:
		return v.a
	case wasmbridge.SpaceB:
		return v.b
	default:
		return nil
	}
}

// WithA returns a view sharing space B with v but reading space A from a.
// Bridged calls use it to bind the memory of whichever module made the call.
func (v *View) WithA(a wasmbridge.Memory) *View {
	return &View{a: a, b: v.b}
}

// ReadSlice returns length bytes at offset in space s.
func (v *View) ReadSlice(s wasmbridge.Space, offset, length uint32) ([]byte, error) {
	mem, err := v.space(s)
	if err != nil {
		return nil, err
	}
	data, err := mem.Read(offset, length)
	if err != nil {
		return nil, tagSpace(err, s)
	}
	return data, nil
}

// WriteSlice writes data at offset in space s.
func (v *View) WriteSlice(s wasmbridge.Space, offset uint32, data []byte) error {
	mem, err := v.space(s)
	if err != nil {
		return err
	}
	if err := mem.Write(offset, data); err != nil {
		return tagSpace(err, s)
	}
	return nil
}

// Copy moves length bytes from src at srcOffset to dst at dstOffset.
// The source is fully bounds-checked before anything is written.
func (v *View) Copy(dst wasmbridge.Space, dstOffset uint32, src wasmbridge.Space, srcOffset, length uint32) error {
	data, err := v.ReadSlice(src, srcOffset, length)
	if err != nil {
		return err
	}
	return v.WriteSlice(dst, dstOffset, data)
}

func (v *View) space(s wasmbridge.Space) (wasmbridge.Memory, error) {
	mem := v.Space(s)
	if mem == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "memory space "+s.String())
	}
	return mem, nil
}

// tagSpace records which side of the boundary an out-of-range access hit.
func tagSpace(err error, s wasmbridge.Space) error {
	if e, ok := err.(*errors.Error); ok && e.Kind == errors.KindOutOfBounds {
		tagged := *e
		tagged.Path = []string{"space " + s.String()}
		return &tagged
	}
	return err
}
