package record

import "encoding/binary"

// Event is an opaque 56-byte event record. Only the common header is decoded.
type Event [EventWidth]byte

// Common event types carried in the header.
const (
	EventQuit            uint32 = 0x100
	EventKeyDown         uint32 = 0x300
	EventKeyUp           uint32 = 0x301
	EventMouseMotion     uint32 = 0x400
	EventMouseButtonDown uint32 = 0x401
	EventMouseButtonUp   uint32 = 0x402
)

// EventFrom copies the first 56 bytes of b (zero-padded if b is shorter).
func EventFrom(b []byte) Event {
	var e Event
	copy(e[:], b)
	return e
}

// Type returns the event type field.
func (e Event) Type() uint32 {
	return binary.LittleEndian.Uint32(e[0:])
}

// Timestamp returns the event timestamp field in milliseconds.
func (e Event) Timestamp() uint32 {
	return binary.LittleEndian.Uint32(e[4:])
}

// SetHeader writes the type and timestamp fields.
func (e *Event) SetHeader(typ, timestamp uint32) {
	binary.LittleEndian.PutUint32(e[0:], typ)
	binary.LittleEndian.PutUint32(e[4:], timestamp)
}

// TypeName returns a short name for well-known event types.
func (e Event) TypeName() string {
	switch e.Type() {
	case EventQuit:
		return "quit"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventMouseMotion:
		return "mousemotion"
	case EventMouseButtonDown:
		return "mousebuttondown"
	case EventMouseButtonUp:
		return "mousebuttonup"
	default:
		return "other"
	}
}
