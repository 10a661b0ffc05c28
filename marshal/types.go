package marshal

import (
	"context"
	"strings"

	"github.com/wippyai/wasm-bridge/record"
)

// Class says how a parameter crosses the boundary.
type Class uint8

const (
	// Scalar parameters are passed through unchanged.
	Scalar Class = iota
	// In parameters point at a record the callee reads; it is copied A→B before the call.
	In
	// Out parameters point at a record the callee fills; it is copied B→A after the call.
	Out
	// Discard parameters are accepted from the caller but not forwarded to the target.
	Discard
)

func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case In:
		return "in"
	case Out:
		return "out"
	case Discard:
		return "drop"
	default:
		return "unknown"
	}
}

// Param describes one parameter of a bridged function.
type Param struct {
	Class Class
	Kind  record.Kind
}

// IsPointer reports whether p is staged through the ring.
func (p Param) IsPointer() bool {
	return p.Class == In || p.Class == Out
}

func (p Param) String() string {
	if !p.IsPointer() {
		return p.Class.String()
	}
	return p.Class.String() + ":" + p.Kind.String()
}

// Signature is the ordered parameter list of a bridged function.
type Signature struct {
	Name   string
	Params []Param
}

// Width returns the cumulative width of every pointer parameter.
func (s Signature) Width() uint32 {
	var w uint32
	for _, p := range s.Params {
		if p.IsPointer() {
			w += p.Kind.Width()
		}
	}
	return w
}

func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Slot is a staged record in space B. It stays valid until the ring wraps
// past it.
type Slot struct {
	Offset uint32
	Kind   record.Kind
}

// End returns the offset one past the last byte of the slot.
func (s Slot) End() uint64 {
	return uint64(s.Offset) + uint64(s.Kind.Width())
}

// Func is a callable target in space B. wazero's api.Function satisfies it.
type Func interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// FuncOf adapts a plain function to Func.
type FuncOf func(ctx context.Context, params ...uint64) ([]uint64, error)

// Call implements Func.
func (f FuncOf) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f(ctx, params...)
}

// Direction of a record copy.
type Direction uint8

const (
	AToB Direction = iota
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// Observer receives marshalling events.
type Observer interface {
	Called(name string)
	Copied(dir Direction, n uint32)
}
