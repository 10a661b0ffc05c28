package record

import (
	"strings"
	"testing"
)

func TestKind_Width(t *testing.T) {
	tests := []struct {
		kind  Kind
		width uint32
		name  string
	}{
		{KindByte, 1, "byte"},
		{KindRect, 16, "rect"},
		{KindEvent, 56, "event"},
		{KindShortString, 32, "string"},
		{KindNone, 0, "none"},
		{Kind(200), 0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Width(); got != tt.width {
				t.Errorf("Width = %d, want %d", got, tt.width)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if KindNone.Valid() || Kind(9).Valid() {
		t.Error("none and out-of-range kinds must be invalid")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"byte", KindByte, true},
		{"u8", KindByte, true},
		{"Rect", KindRect, true},
		{" event ", KindEvent, true},
		{"string", KindShortString, true},
		{"short_string", KindShortString, true},
		{"i32", KindNone, false},
		{"", KindNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMaxWidth(t *testing.T) {
	if MaxWidth() != 56 {
		t.Errorf("MaxWidth = %d, want 56", MaxWidth())
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: -5, Y: 10, W: 640, H: 480}
	b := r.Bytes()
	if len(b) != RectWidth {
		t.Fatalf("len = %d", len(b))
	}
	// little-endian -5
	if b[0] != 0xFB || b[3] != 0xFF {
		t.Errorf("unexpected X encoding % x", b[:4])
	}

	got, err := DecodeRect(b)
	if err != nil {
		t.Fatalf("DecodeRect: %v", err)
	}
	if got != r {
		t.Errorf("got %+v, want %+v", got, r)
	}

	if _, err := DecodeRect(b[:15]); err == nil {
		t.Error("expected error for short record")
	}
}

func TestShortString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "hex-chess", "hex-chess"},
		{"exactly 31", strings.Repeat("a", 31), strings.Repeat("a", 31)},
		{"truncated", strings.Repeat("b", 40), strings.Repeat("b", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := NewShortString(tt.in)
			if !ss.Terminated() {
				t.Error("NewShortString must always terminate")
			}
			if got := ss.String(); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortString_Unterminated(t *testing.T) {
	ss := ShortStringFrom([]byte(strings.Repeat("x", 40)))
	if ss.Terminated() {
		t.Error("expected no terminator")
	}
	if got := ss.String(); got != strings.Repeat("x", 32) {
		t.Errorf("String = %q", got)
	}
}

func TestShortString_ReaderLocatesTerminator(t *testing.T) {
	// bytes after the terminator belong to whatever followed the string in memory
	raw := append([]byte("assets/board.png\x00"), []byte("garbage-after-nul")...)
	ss := ShortStringFrom(raw)
	if got := ss.String(); got != "assets/board.png" {
		t.Errorf("String = %q", got)
	}
}

func TestEvent(t *testing.T) {
	var e Event
	e.SetHeader(EventKeyDown, 1234)

	decoded := EventFrom(e[:])
	if decoded.Type() != EventKeyDown {
		t.Errorf("Type = %#x", decoded.Type())
	}
	if decoded.Timestamp() != 1234 {
		t.Errorf("Timestamp = %d", decoded.Timestamp())
	}
	if decoded.TypeName() != "keydown" {
		t.Errorf("TypeName = %q", decoded.TypeName())
	}

	e.SetHeader(0x1234, 0)
	if e.TypeName() != "other" {
		t.Errorf("TypeName = %q", e.TypeName())
	}
}

func TestColorFrom(t *testing.T) {
	tests := []struct {
		in   []byte
		want Color
	}{
		{nil, Color{A: 0xFF}},
		{[]byte{1, 2, 3}, Color{1, 2, 3, 0xFF}},
		{[]byte{1, 2, 3, 4}, Color{1, 2, 3, 4}},
		{[]byte{1, 2, 3, 4, 5}, Color{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		if got := ColorFrom(tt.in...); got != tt.want {
			t.Errorf("ColorFrom(%v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if ch := (Color{9, 8, 7, 6}).Channels(); ch != [4]byte{9, 8, 7, 6} {
		t.Errorf("Channels() = %v", ch)
	}
}
