// Package memory provides byte-level access to the two linear memories joined by a
// bridge.
//
// # Memories
//
// Wraps wazero api.Memory:
//
//	mem := memory.WrapMemory(instance.Memory())
//	// mem implements wasmbridge.Memory
//
// Plain byte slices are memories too, which keeps the marshalling layer testable
// without a wasm runtime:
//
//	mem := memory.Bytes(make([]byte, 65536))
//
// # View
//
// View pairs space A (the calling module) with space B (the host module that owns
// the ring region):
//
//	v := memory.NewView(guestMem, hostMem)
//	data, err := v.ReadSlice(wasmbridge.SpaceA, ptr, 16)
//	err = v.WriteSlice(wasmbridge.SpaceB, slot, data)
//
// Accesses outside a memory return errors of kind out_of_bounds. Nothing is cached
// and nothing is synchronized.
package memory
