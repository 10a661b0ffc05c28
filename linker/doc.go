// Package linker wires a guest module's imports to a host module's exports.
//
// Link reads the host's ring accessors once, validates the ring region and
// instantiates one wazero host module per import namespace of a binding.Table.
// Every host function marshals its pointer arguments through the ring before
// calling the target export.
//
// # Setup Order
//
//  1. Instantiate the host module (space B)
//  2. Link the binding table against it
//  3. Instantiate the guest module (space A)
//
// # Example
//
//	host, _ := rt.InstantiateWithConfig(ctx, hostWasm, wazero.NewModuleConfig().WithName("host"))
//	l, _ := linker.Link(ctx, rt, host, binding.SDL2(), linker.DefaultOptions())
//	defer l.Close(ctx)
//	guest, _ := rt.InstantiateWithConfig(ctx, guestWasm, wazero.NewModuleConfig().WithName("guest"))
//
// The linker is not safe for concurrent use: the ring cursor is shared by every
// bridged call.
package linker
