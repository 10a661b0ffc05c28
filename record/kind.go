package record

import "strings"

// Kind names a fixed-width record that crosses the boundary as an opaque byte span.
type Kind uint8

const (
	// KindNone marks a parameter that is not a record pointer.
	KindNone Kind = iota
	KindByte
	KindRect
	KindEvent
	KindShortString
)

// Record widths in bytes. Both modules' struct layouts must agree with these.
const (
	ByteWidth        = 1
	RectWidth        = 16
	EventWidth       = 56
	ShortStringWidth = 32
)

var kindNames = [...]string{
	KindNone:        "none",
	KindByte:        "byte",
	KindRect:        "rect",
	KindEvent:       "event",
	KindShortString: "string",
}

var kindWidths = [...]uint32{
	KindNone:        0,
	KindByte:        ByteWidth,
	KindRect:        RectWidth,
	KindEvent:       EventWidth,
	KindShortString: ShortStringWidth,
}

// Width returns the number of bytes copied for k, or 0 for KindNone and unknown kinds.
func (k Kind) Width() uint32 {
	if int(k) < len(kindWidths) {
		return kindWidths[k]
	}
	return 0
}

// Valid reports whether k is one of the record kinds.
func (k Kind) Valid() bool {
	return k > KindNone && int(k) < len(kindWidths)
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the kind for name. "str" and "short_string" are accepted
// as aliases of "string".
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "byte", "u8":
		return KindByte, true
	case "rect":
		return KindRect, true
	case "event":
		return KindEvent, true
	case "string", "str", "short_string":
		return KindShortString, true
	}
	return KindNone, false
}

// Kinds returns every record kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindByte, KindRect, KindEvent, KindShortString}
}

// MaxWidth returns the width of the largest record kind.
func MaxWidth() uint32 {
	var m uint32
	for _, k := range Kinds() {
		m = max(m, k.Width())
	}
	return m
}
