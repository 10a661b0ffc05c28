package record

import "bytes"

// ShortString is the fixed 32-byte window used for bounded string parameters.
// It is not length-prefixed; the reader scans for the NUL terminator.
type ShortString [ShortStringWidth]byte

// NewShortString stores s NUL-terminated, truncating it to fit the window.
func NewShortString(s string) ShortString {
	var ss ShortString
	copy(ss[:ShortStringWidth-1], s)
	return ss
}

// ShortStringFrom copies the first 32 bytes of b (zero-padded if b is shorter).
func ShortStringFrom(b []byte) ShortString {
	var ss ShortString
	copy(ss[:], b)
	return ss
}

// String returns the bytes before the first NUL, or the whole window if there is none.
func (s ShortString) String() string {
	if i := bytes.IndexByte(s[:], 0); i >= 0 {
		return string(s[:i])
	}
	return string(s[:])
}

// Terminated reports whether the window contains a NUL terminator.
func (s ShortString) Terminated() bool {
	return bytes.IndexByte(s[:], 0) >= 0
}
