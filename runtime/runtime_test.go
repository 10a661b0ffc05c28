package runtime

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/config"
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/internal/wasmtest"
	"github.com/wippyai/wasm-bridge/metrics"
	"github.com/wippyai/wasm-bridge/ring"
)

var testRegion = ring.Region{Base: 2048, Size: 128}

func newRuntime(t *testing.T) (context.Context, *Runtime) {
	t.Helper()
	ctx := context.Background()
	r, err := New(ctx, config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close(ctx) })
	return ctx, r
}

func loaded(t *testing.T, guestCtx uint32, frames int32) (context.Context, *Runtime) {
	t.Helper()
	ctx, r := newRuntime(t)
	if err := r.LoadHost(ctx, wasmtest.SDLHost(testRegion)); err != nil {
		t.Fatalf("LoadHost: %v", err)
	}
	if err := r.Link(ctx, binding.SDL2()); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := r.LoadGuest(ctx, wasmtest.SDLGuest(guestCtx, frames)); err != nil {
		t.Fatalf("LoadGuest: %v", err)
	}
	return ctx, r
}

func guestWord(t *testing.T, r *Runtime, offset uint32) uint32 {
	t.Helper()
	v, ok := r.Guest().Memory().ReadUint32Le(offset)
	if !ok {
		t.Fatalf("read guest word at %d", offset)
	}
	return v
}

func TestRun(t *testing.T) {
	ctx, r := loaded(t, 4096, 3)

	if err := r.Run(ctx, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := r.Stats()
	if !s.Booted || !s.Ended {
		t.Errorf("Stats = %+v, want booted and ended", s)
	}
	if s.Frames != 3 {
		t.Errorf("Frames = %d, want 3", s.Frames)
	}
	if got := guestWord(t, r, wasmtest.GuestStarted); got != 1 {
		t.Errorf("_start ran %d times", got)
	}
	if got := guestWord(t, r, wasmtest.GuestFrames); got != 3 {
		t.Errorf("guest counted %d frames", got)
	}
	if got := guestWord(t, r, wasmtest.GuestEnded); got != 1 {
		t.Errorf("_end flag = %d", got)
	}
}

func TestRunInitDeclined(t *testing.T) {
	ctx, r := loaded(t, 0, 3)

	if err := r.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := r.Stats()
	if s.Booted || s.Frames != 0 {
		t.Errorf("Stats = %+v, want no frames", s)
	}
	if got := guestWord(t, r, wasmtest.GuestEnded); got != 0 {
		t.Errorf("_end ran after a declined init")
	}
	if _, err := r.Frame(ctx); err == nil {
		t.Error("Frame ran without a successful boot")
	}
}

func TestLoopCancelled(t *testing.T) {
	ctx, r := loaded(t, 4096, 1000)
	if ok, err := r.Boot(ctx); !ok || err != nil {
		t.Fatalf("Boot = %v, %v", ok, err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := r.Loop(cancelled, time.Hour)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Loop error = %v, want context.Canceled", err)
	}
	if s := r.Stats(); s.Frames != 1 {
		t.Errorf("Frames = %d, want 1", s.Frames)
	}
	if got := guestWord(t, r, wasmtest.GuestEnded); got != 1 {
		t.Error("_end did not run after cancellation")
	}
}

func TestBootTwice(t *testing.T) {
	ctx, r := loaded(t, 4096, 3)
	for i := 0; i < 2; i++ {
		ok, err := r.Boot(ctx)
		if !ok || err != nil {
			t.Fatalf("Boot #%d = %v, %v", i, ok, err)
		}
	}
	if got := guestWord(t, r, wasmtest.GuestStarted); got != 1 {
		t.Errorf("_start flag = %d", got)
	}
}

func TestSetupOrder(t *testing.T) {
	ctx, r := newRuntime(t)

	notInit := errors.New(errors.PhaseLinking, errors.KindNotInitialized).Build()
	if err := r.Link(ctx, binding.SDL2()); !stderrors.Is(err, notInit) {
		t.Errorf("Link before LoadHost = %v", err)
	}

	notInit = errors.New(errors.PhaseLoad, errors.KindNotInitialized).Build()
	if err := r.LoadGuest(ctx, wasmtest.SDLGuest(1, 1)); !stderrors.Is(err, notInit) {
		t.Errorf("LoadGuest before Link = %v", err)
	}

	notInit = errors.New(errors.PhaseRuntime, errors.KindNotInitialized).Build()
	if _, err := r.Boot(ctx); !stderrors.Is(err, notInit) {
		t.Errorf("Boot before LoadGuest = %v", err)
	}

	if err := r.LoadHost(ctx, wasmtest.SDLHost(testRegion)); err != nil {
		t.Fatal(err)
	}
	dup := errors.New(errors.PhaseLoad, errors.KindDuplicate).Build()
	if err := r.LoadHost(ctx, wasmtest.SDLHost(testRegion)); !stderrors.Is(err, dup) {
		t.Errorf("second LoadHost = %v", err)
	}
}

func TestLoadHostInvalid(t *testing.T) {
	ctx, r := newRuntime(t)
	err := r.LoadHost(ctx, []byte("not wasm"))
	want := errors.New(errors.PhaseLoad, errors.KindInvalidData).Build()
	if !stderrors.Is(err, want) {
		t.Fatalf("LoadHost error = %v", err)
	}
}

func TestLoadHostRunsInit(t *testing.T) {
	ctx, r := newRuntime(t)
	if err := r.LoadHost(ctx, wasmtest.InitHost(testRegion)); err != nil {
		t.Fatalf("LoadHost: %v", err)
	}
	if v, _ := r.Host().Memory().ReadUint32Le(wasmtest.RingCell); v != testRegion.Base {
		t.Fatalf("ring cell = %d, want %d", v, testRegion.Base)
	}
	if err := r.Link(ctx, binding.SDL2()); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got := r.Linker().Region(); got != testRegion {
		t.Errorf("Region = %v, want %v", got, testRegion)
	}
	if err := r.LoadGuest(ctx, wasmtest.SDLGuest(4096, 1)); err != nil {
		t.Fatal(err)
	}
	res, err := r.Call(ctx, "poll")
	if err != nil {
		t.Fatalf("Call(poll): %v", err)
	}
	if api.DecodeU32(res[0]) != wasmtest.EventType {
		t.Errorf("poll = %#x, want %#x", res[0], wasmtest.EventType)
	}
}

func TestLoadHostInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Entry.HostInit = ""
	r, err := New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)

	if err := r.LoadHost(ctx, wasmtest.InitHost(testRegion)); err != nil {
		t.Fatalf("LoadHost: %v", err)
	}
	err = r.Link(ctx, binding.SDL2())
	want := errors.New(errors.PhaseSetup, errors.KindInvalidInput).Build()
	if !stderrors.Is(err, want) {
		t.Fatalf("Link error = %v, want ring at offset 0 rejected", err)
	}
}

func TestLoadGuestMissingImports(t *testing.T) {
	ctx, r := newRuntime(t)
	if err := r.LoadHost(ctx, wasmtest.SDLHost(testRegion)); err != nil {
		t.Fatal(err)
	}
	partial := binding.MustTable(
		binding.Descriptor{Module: binding.NamespaceSDL2, Name: "SDL_GetError", Target: "_GetError",
			Results: []api.ValueType{api.ValueTypeI32}},
		binding.Descriptor{Module: binding.NamespaceImage, Name: "IMG_Quit", Target: "_Image_Quit"},
	)
	if err := r.Link(ctx, partial); err != nil {
		t.Fatalf("Link: %v", err)
	}

	err := r.LoadGuest(ctx, wasmtest.SDLGuest(1, 1))
	var missing *errors.MissingImportsError
	if !stderrors.As(err, &missing) {
		t.Fatalf("LoadGuest error = %v, want MissingImportsError", err)
	}
	if len(missing.Imports) != 5 {
		t.Errorf("missing = %v", missing.Imports)
	}
}

func TestCall(t *testing.T) {
	ctx, r := loaded(t, 4096, 3)

	res, err := r.Call(ctx, "fill")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := api.DecodeU32(res[0]); got != 10 {
		t.Errorf("fill() = %d, want 10", got)
	}

	_, err = r.Call(ctx, "nope")
	want := errors.New(errors.PhaseRuntime, errors.KindNotFound).Build()
	if !stderrors.Is(err, want) {
		t.Errorf("Call(nope) = %v", err)
	}

	_, err = r.Call(ctx, "fillOOB")
	want = errors.New(errors.PhaseRuntime, errors.KindTargetCall).Build()
	if !stderrors.Is(err, want) {
		t.Errorf("Call(fillOOB) = %v, want target_call", err)
	}
}

func TestExports(t *testing.T) {
	_, r := loaded(t, 4096, 3)
	defs := r.Exports()
	if len(defs) == 0 {
		t.Fatal("no exports")
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].ExportNames()[0] > defs[i].ExportNames()[0] {
			t.Fatalf("exports not sorted: %s before %s", defs[i-1].ExportNames()[0], defs[i].ExportNames()[0])
		}
	}
}

func TestInstrument(t *testing.T) {
	ctx, r := loaded(t, 4096, 3)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	r.Instrument(m)

	for i := 0; i < 3; i++ {
		if _, err := r.Call(ctx, "poll"); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(m.Calls.WithLabelValues("SDL_PollEvent")); got != 3 {
		t.Errorf("calls = %v, want 3", got)
	}
	// 128-byte ring, 56-byte events: the third call wraps.
	if got := testutil.ToFloat64(m.Wraps); got != 1 {
		t.Errorf("wraps = %v, want 1", got)
	}
	if s := r.Stats(); s.Ring.Wraps != 1 || s.Ring.Allocations != 3 {
		t.Errorf("ring stats = %+v", s.Ring)
	}
}

func TestWASIDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.WASI = false
	r, err := New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)
	if r.Wazero().Module("wasi_snapshot_preview1") != nil {
		t.Error("WASI instantiated while disabled")
	}

	cfg.WASI = true
	w, err := New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close(ctx)
	if w.Wazero().Module("wasi_snapshot_preview1") == nil {
		t.Error("WASI missing while enabled")
	}
}
