// Package runtime drives a host module and a guest module through the bridge.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	rt.LoadHost(ctx, hostWasm)          // space B, exports the ring accessors
//	rt.Link(ctx, binding.SDL2())        // host modules for the guest imports
//	rt.LoadGuest(ctx, guestWasm)        // space A
//	err = rt.Run(ctx, 16*time.Millisecond)
//
// # Boot Sequence
//
// Boot calls the guest's start export if present, then passes the pointer
// returned by the context export to the init export. A zero init result means
// the guest declined to run. Loop then calls the frame export once per interval
// until it returns zero or ctx is done, and finally calls the end export.
//
// Entry point names come from config.Entrypoints.
//
// # Instrumentation
//
//	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
//	rt.Instrument(m)
//
// # Thread Safety
//
// A Runtime is not safe for concurrent use.
package runtime
