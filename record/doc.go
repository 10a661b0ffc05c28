// Package record defines the fixed-size records that cross the bridge.
//
// The marshaller treats every record as an opaque byte span of a fixed width:
//
//	Kind         Width  Used for
//	byte             1  single scalar output parameter (one colour channel)
//	rect            16  rectangle, four 32-bit fields
//	event           56  opaque polymorphic event record
//	string          32  bounded input string, NUL-terminated inside the window
//
// The typed helpers (Rect, ShortString, Event) are for tools and tests that want to
// look inside a record; the staging path never uses them.
package record
