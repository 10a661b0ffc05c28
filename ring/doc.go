// Package ring implements the staging allocator used by bridged calls.
//
// The ring region is a fixed sub-range of the host module's memory. Allocate hands
// out consecutive slots and wraps the cursor back to the start of the region when
// a slot would run past its end:
//
//	a := ring.New(ring.Region{Base: 0x1000, Size: 56})
//	a.Allocate(32) // 0x1000
//	a.Allocate(16) // 0x1020
//	a.Allocate(16) // 0x1000, wrapped
//
// Slots are never freed. A slot stays valid until a later allocation wraps past it,
// so callers consume each slot within the call that allocated it.
//
// A call that stages several records reserves their total width first:
//
//	a.Reserve(16 + 16)
//	src := a.Allocate(16)
//	dst := a.Allocate(16) // never wraps onto src
//
// The region must be at least as large as the widest single call, which
// Region.Validate checks once at setup.
//
// An Allocator is not safe for concurrent use.
package ring
