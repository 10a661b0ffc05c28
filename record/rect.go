package record

import (
	"encoding/binary"

	"github.com/wippyai/wasm-bridge/errors"
)

// Rect mirrors a wasm32 rectangle: four little-endian int32 fields.
type Rect struct {
	X, Y int32
	W, H int32
}

// Bytes encodes r in its 16-byte wire layout.
func (r Rect) Bytes() []byte {
	b := make([]byte, RectWidth)
	binary.LittleEndian.PutUint32(b[0:], uint32(r.X))
	binary.LittleEndian.PutUint32(b[4:], uint32(r.Y))
	binary.LittleEndian.PutUint32(b[8:], uint32(r.W))
	binary.LittleEndian.PutUint32(b[12:], uint32(r.H))
	return b
}

// DecodeRect reads a Rect from the first 16 bytes of b.
func DecodeRect(b []byte) (Rect, error) {
	if len(b) < RectWidth {
		return Rect{}, errors.InvalidData(errors.PhaseRuntime, []string{"rect"}, "short rect record")
	}
	return Rect{
		X: int32(binary.LittleEndian.Uint32(b[0:])),
		Y: int32(binary.LittleEndian.Uint32(b[4:])),
		W: int32(binary.LittleEndian.Uint32(b[8:])),
		H: int32(binary.LittleEndian.Uint32(b[12:])),
	}, nil
}
