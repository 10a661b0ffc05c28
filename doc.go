// Package wasmbridge links two separately compiled WebAssembly modules that call
// into each other's functions without sharing a linear memory.
//
// The calling module (space A) imports functions that the host module (space B)
// exports. Pointers are only meaningful inside the space that produced them, so every
// pointer-bearing argument is staged through a fixed ring region reserved inside
// space B: input records are copied A→B before the call, output records are copied
// B→A after it.
//
// # Architecture Overview
//
//	wasmbridge/          Root package with the Memory interface and Space ids
//	├── memory/          Byte-level views over the two spaces
//	├── ring/            Bump allocator over the ring region with wrap-around
//	├── record/          Fixed record widths and typed record helpers
//	├── marshal/         Stage/commit primitives and the generic call dispatcher
//	├── binding/         Binding tables (SDL2 defaults, YAML manifests)
//	├── linker/          wazero host modules that forward guest imports
//	├── runtime/         High-level API: load, link, boot, frame loop
//	├── config/          Environment configuration
//	├── metrics/         Prometheus instrumentation
//	└── errors/          Structured error types
//
// # Quick Start
//
//	rt, err := runtime.New(ctx, config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	if err := rt.LoadHost(ctx, hostWasm); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Link(ctx, binding.SDL2()); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.LoadGuest(ctx, guestWasm); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Run(ctx, 16*time.Millisecond); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// A bridge is single-threaded. The ring cursor is unlocked shared state and is correct
// only because one bridged call is in flight at a time.
package wasmbridge
