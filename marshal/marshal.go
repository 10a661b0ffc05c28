package marshal

import (
	"context"
	"fmt"
	"strconv"

	wasmbridge "github.com/wippyai/wasm-bridge"
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/memory"
	"github.com/wippyai/wasm-bridge/record"
	"github.com/wippyai/wasm-bridge/ring"
)

// Marshaller stages records through a ring region in space B.
// It is not safe for concurrent use.
type Marshaller struct {
	view     *memory.View
	alloc    *ring.Allocator
	observer Observer
}

// New creates a marshaller over view that allocates slots from alloc.
func New(view *memory.View, alloc *ring.Allocator) *Marshaller {
	return &Marshaller{view: view, alloc: alloc}
}

// SetObserver installs o to receive call and copy events. nil removes it.
func (m *Marshaller) SetObserver(o Observer) {
	m.observer = o
}

// Allocator returns the ring allocator used for staging.
func (m *Marshaller) Allocator() *ring.Allocator {
	return m.alloc
}

// View returns the memory view.
func (m *Marshaller) View() *memory.View {
	return m.view
}

// WithA returns a marshaller sharing the allocator and space B but reading
// space A from a.
func (m *Marshaller) WithA(a wasmbridge.Memory) *Marshaller {
	return &Marshaller{view: m.view.WithA(a), alloc: m.alloc, observer: m.observer}
}

// StageInput copies the record at ptr in space A into a fresh slot in space B
// and returns the slot. The null pointer is returned as is without touching memory.
func (m *Marshaller) StageInput(ptr uint32, kind record.Kind) (uint32, error) {
	if ptr == wasmbridge.Null {
		return wasmbridge.Null, nil
	}
	w, err := width(errors.PhaseStage, kind)
	if err != nil {
		return 0, err
	}

	slot := m.alloc.Allocate(w)
	if err := m.view.Copy(wasmbridge.SpaceB, slot, wasmbridge.SpaceA, ptr, w); err != nil {
		return 0, copyError(errors.PhaseStage, err,
			fmt.Sprintf("stage %s from A@%#x into B@%#x", kind, ptr, slot))
	}
	if m.observer != nil {
		m.observer.Copied(AToB, w)
	}
	return slot, nil
}

// StageOutput reserves a slot in space B for the callee to fill and returns it.
// Nothing is copied, but [ptr, ptr+width) must already lie inside space A.
// The null pointer is returned as is.
func (m *Marshaller) StageOutput(ptr uint32, kind record.Kind) (uint32, error) {
	if ptr == wasmbridge.Null {
		return wasmbridge.Null, nil
	}
	w, err := width(errors.PhaseStage, kind)
	if err != nil {
		return 0, err
	}
	if _, err := m.view.ReadSlice(wasmbridge.SpaceA, ptr, w); err != nil {
		return 0, copyError(errors.PhaseStage, err,
			fmt.Sprintf("output %s at A@%#x", kind, ptr))
	}
	return m.alloc.Allocate(w), nil
}

// CommitOutput copies the record in slot (space B) back to ptr in space A.
// A null ptr is skipped. slot is a ring offset and may legitimately be 0.
func (m *Marshaller) CommitOutput(ptr, slot uint32, kind record.Kind) error {
	if ptr == wasmbridge.Null {
		return nil
	}
	w, err := width(errors.PhaseCommit, kind)
	if err != nil {
		return err
	}

	if err := m.view.Copy(wasmbridge.SpaceA, ptr, wasmbridge.SpaceB, slot, w); err != nil {
		return copyError(errors.PhaseCommit, err,
			fmt.Sprintf("commit %s from B@%#x to A@%#x", kind, slot, ptr))
	}
	if m.observer != nil {
		m.observer.Copied(BToA, w)
	}
	return nil
}

// Dispatch runs one bridged call: every pointer parameter is staged in
// declaration order, target is called with the translated arguments, and every
// output parameter is committed in declaration order. Scalars and the target's
// results pass through unchanged; discarded parameters are not forwarded.
//
// A staging error aborts before the call. A target error is returned as is and no
// output is committed.
func (m *Marshaller) Dispatch(ctx context.Context, sig Signature, target Func, args []uint64) ([]uint64, error) {
	if len(args) != len(sig.Params) {
		return nil, errors.ArgumentCount(sig.Name, len(sig.Params), len(args))
	}
	if m.observer != nil {
		m.observer.Called(sig.Name)
	}

	var reserve uint32
	for i, p := range sig.Params {
		if p.IsPointer() && uint32(args[i]) != wasmbridge.Null {
			reserve += p.Kind.Width()
		}
	}
	if reserve > 0 {
		m.alloc.Reserve(reserve)
	}

	staged := make([]uint64, 0, len(args))
	slots := make([]Slot, len(args))
	for i, p := range sig.Params {
		var (
			slot uint32
			err  error
		)
		switch p.Class {
		case In:
			slot, err = m.StageInput(uint32(args[i]), p.Kind)
		case Out:
			slot, err = m.StageOutput(uint32(args[i]), p.Kind)
		case Discard:
			continue
		default:
			staged = append(staged, args[i])
			continue
		}
		if err != nil {
			return nil, atParam(err, sig.Name, i)
		}
		slots[i] = Slot{Offset: slot, Kind: p.Kind}
		staged = append(staged, uint64(slot))
	}

	results, err := target.Call(ctx, staged...)
	if err != nil {
		return nil, err
	}

	for i, p := range sig.Params {
		if p.Class != Out {
			continue
		}
		if err := m.CommitOutput(uint32(args[i]), slots[i].Offset, slots[i].Kind); err != nil {
			return nil, atParam(err, sig.Name, i)
		}
	}

	return results, nil
}

func width(phase errors.Phase, kind record.Kind) (uint32, error) {
	if !kind.Valid() {
		return 0, errors.New(phase, errors.KindInvalidArgument).
			Value(kind).
			Detail("invalid record kind %d", uint8(kind)).
			Build()
	}
	return kind.Width(), nil
}

// copyError wraps a memory error under phase, keeping the cause's kind.
func copyError(phase errors.Phase, err error, detail string) error {
	kind := errors.KindOutOfBounds
	if e, ok := err.(*errors.Error); ok {
		kind = e.Kind
	}
	return errors.Wrap(phase, kind, err, detail)
}

// atParam records the function and parameter index a marshalling error belongs to.
func atParam(err error, name string, index int) error {
	e, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	located := *e
	located.Path = []string{name, "arg" + strconv.Itoa(index)}
	return &located
}
