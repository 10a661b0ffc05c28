// Package marshal implements the call adapter layer of the bridge.
//
// For every bridged call the pointer parameters are translated from space A to
// space B through ring slots:
//
//	In   copy the record A→B into a new slot, pass the slot
//	Out  reserve a slot, pass it, copy B→A after the call
//	     (scalars are passed through unchanged)
//
// The zero pointer is the null sentinel and is never staged or copied.
//
// Dispatch interprets a Signature so individual functions need no hand-written
// adapter code:
//
//	sig := marshal.Signature{
//		Name:   "SDL_PollEvent",
//		Params: []marshal.Param{{Class: marshal.Out, Kind: record.KindEvent}},
//	}
//	results, err := m.Dispatch(ctx, sig, pollEvent, []uint64{uint64(eventPtr)})
//
// A Marshaller is not safe for concurrent use; exactly one bridged call may be in
// flight.
package marshal
