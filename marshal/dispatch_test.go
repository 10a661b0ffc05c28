package marshal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	bridgeerrors "github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/memory"
	"github.com/wippyai/wasm-bridge/record"
	"github.com/wippyai/wasm-bridge/ring"
)

type recordedCall struct {
	params []uint64
}

func recorder(calls *[]recordedCall, results []uint64, err error) Func {
	return FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		*calls = append(*calls, recordedCall{params: append([]uint64(nil), params...)})
		return results, err
	})
}

func TestDispatch_TwoRectInputs(t *testing.T) {
	f := newFixture(56)
	src := record.Rect{X: 1, Y: 2, W: 3, H: 4}
	dst := record.Rect{X: 10, Y: 20, W: 30, H: 40}
	copy(f.a[100:], src.Bytes())
	copy(f.a[200:], dst.Bytes())

	// push the cursor so an unreserved second slot would wrap onto the first
	f.m.Allocator().Allocate(40)

	var gotSrc, gotDst record.Rect
	renderCopy := FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		var err error
		if gotSrc, err = record.DecodeRect(f.b[params[2]:]); err != nil {
			return nil, err
		}
		if gotDst, err = record.DecodeRect(f.b[params[3]:]); err != nil {
			return nil, err
		}
		if params[0] != 0x77 || params[1] != 0x88 {
			t.Errorf("scalars changed: %#x %#x", params[0], params[1])
		}
		return []uint64{0}, nil
	})

	sig := Signature{Name: "SDL_RenderCopy", Params: []Param{
		{Class: Scalar}, {Class: Scalar},
		{Class: In, Kind: record.KindRect}, {Class: In, Kind: record.KindRect},
	}}
	results, err := f.m.Dispatch(context.Background(), sig, renderCopy, []uint64{0x77, 0x88, 100, 200})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if results[0] != 0 {
		t.Errorf("result = %d", results[0])
	}
	if gotSrc != src || gotDst != dst {
		t.Errorf("callee saw src %+v dst %+v", gotSrc, gotDst)
	}
}

func TestDispatch_NullRectPassesZero(t *testing.T) {
	f := newFixture(56)
	copy(f.a[200:], record.Rect{W: 5, H: 5}.Bytes())

	var calls []recordedCall
	sig := Signature{Name: "SDL_RenderCopy", Params: []Param{
		{Class: Scalar}, {Class: Scalar},
		{Class: In, Kind: record.KindRect}, {Class: In, Kind: record.KindRect},
	}}
	if _, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, []uint64{0}, nil), []uint64{1, 2, 0, 200}); err != nil {
		t.Fatal(err)
	}
	if calls[0].params[2] != 0 {
		t.Errorf("null source rect translated to %#x", calls[0].params[2])
	}
	if calls[0].params[3] != ringBase {
		t.Errorf("dest rect slot = %#x, want %#x", calls[0].params[3], ringBase)
	}
	if f.m.Allocator().Stats().Allocations != 1 {
		t.Errorf("Allocations = %d, want 1", f.m.Allocator().Stats().Allocations)
	}
}

func TestDispatch_ColorChannelsIndependent(t *testing.T) {
	f := newFixture(56)
	const pr, pg, pb = 40, 41, 42
	f.a[pr], f.a[pg], f.a[pb] = 0xEE, 0xEE, 0xEE

	getColor := FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		slots := params[1:4]
		for i, s := range slots {
			for j := i + 1; j < len(slots); j++ {
				if s == slots[j] {
					t.Fatalf("channels %d and %d share slot %#x", i, j, s)
				}
			}
		}
		f.b[slots[0]] = 0x11
		f.b[slots[1]] = 0x22
		f.b[slots[2]] = 0x33
		return []uint64{0}, nil
	})

	sig := Signature{Name: "SDL_GetRenderDrawColor", Params: []Param{
		{Class: Scalar},
		{Class: Out, Kind: record.KindByte},
		{Class: Out, Kind: record.KindByte},
		{Class: Out, Kind: record.KindByte},
	}}
	if _, err := f.m.Dispatch(context.Background(), sig, getColor, []uint64{9, pr, pg, pb}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]byte{0x11, 0x22, 0x33}, []byte(f.a[pr:pb+1])); diff != "" {
		t.Errorf("channels (-want +got):\n%s", diff)
	}
}

func TestDispatch_StringInput(t *testing.T) {
	f := newFixture(56)
	title := record.NewShortString("hex chess")
	copy(f.a[64:], title[:])

	var seen string
	createWindow := FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		seen = record.ShortStringFrom(f.b[params[0]:]).String()
		return []uint64{0xABC}, nil
	})

	sig := Signature{Name: "SDL_CreateWindow", Params: []Param{
		{Class: In, Kind: record.KindShortString},
		{Class: Scalar}, {Class: Scalar}, {Class: Scalar}, {Class: Scalar}, {Class: Scalar},
	}}
	results, err := f.m.Dispatch(context.Background(), sig, createWindow, []uint64{64, 0, 0, 640, 480, 0})
	if err != nil {
		t.Fatal(err)
	}
	if seen != "hex chess" {
		t.Errorf("callee saw %q", seen)
	}
	if results[0] != 0xABC {
		t.Errorf("window handle = %#x", results[0])
	}
}

func TestDispatch_TargetErrorSkipsCommit(t *testing.T) {
	f := newFixture(56)
	copy(f.a[300:], []byte("original"))
	boom := errors.New("trap")

	target := FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		copy(f.b[params[0]:], []byte("partial!"))
		return nil, boom
	})

	sig := Signature{Name: "SDL_PollEvent", Params: []Param{{Class: Out, Kind: record.KindEvent}}}
	_, err := f.m.Dispatch(context.Background(), sig, target, []uint64{300})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want target error", err)
	}
	if string(f.a[300:308]) != "original" {
		t.Errorf("output committed after failed call: %q", f.a[300:308])
	}
}

func TestDispatch_StagingErrorSkipsCall(t *testing.T) {
	f := newFixture(56)
	var calls []recordedCall

	sig := Signature{Name: "SDL_RenderFillRect", Params: []Param{
		{Class: Scalar},
		{Class: In, Kind: record.KindRect},
	}}
	_, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, nil, nil), []uint64{1, 4090})
	if err == nil {
		t.Fatal("expected staging error")
	}
	if len(calls) != 0 {
		t.Error("target called after staging failure")
	}

	var be *bridgeerrors.Error
	if !errors.As(err, &be) {
		t.Fatalf("unexpected error type %T", err)
	}
	if be.Phase != bridgeerrors.PhaseStage || be.Kind != bridgeerrors.KindOutOfBounds {
		t.Errorf("phase/kind = %s/%s", be.Phase, be.Kind)
	}
	if diff := cmp.Diff([]string{"SDL_RenderFillRect", "arg1"}, be.Path); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
}

func TestDispatch_OutputOutOfBoundsSkipsCall(t *testing.T) {
	f := newFixture(56)
	f.a[10], f.a[11] = 0xEE, 0xEE
	var calls []recordedCall

	sig := Signature{Name: "SDL_GetRenderDrawColor", Params: []Param{
		{Class: Scalar},
		{Class: Out, Kind: record.KindByte},
		{Class: Out, Kind: record.KindByte},
		{Class: Out, Kind: record.KindByte},
	}}
	_, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, []uint64{0}, nil), []uint64{9, 10, 11, 1 << 20})
	if !errors.Is(err, &bridgeerrors.Error{Phase: bridgeerrors.PhaseStage, Kind: bridgeerrors.KindOutOfBounds}) {
		t.Fatalf("err = %v, want stage out_of_bounds", err)
	}
	if len(calls) != 0 {
		t.Error("target called with an unwritable output")
	}
	if f.a[10] != 0xEE || f.a[11] != 0xEE {
		t.Errorf("outputs partially committed: %#x %#x", f.a[10], f.a[11])
	}

	var be *bridgeerrors.Error
	if errors.As(err, &be) {
		if diff := cmp.Diff([]string{"SDL_GetRenderDrawColor", "arg3"}, be.Path); diff != "" {
			t.Errorf("path (-want +got):\n%s", diff)
		}
	}
}

func TestDispatch_SlotAtRingStartCommits(t *testing.T) {
	a := memory.Bytes(make([]byte, 256))
	b := memory.Bytes(make([]byte, 256))
	m := New(memory.NewView(a, b), ring.New(ring.Region{Base: 0, Size: 56}))

	var ev record.Event
	ev.SetHeader(record.EventKeyDown, 99)
	pollEvent := FuncOf(func(ctx context.Context, params ...uint64) ([]uint64, error) {
		if params[0] != 0 {
			t.Errorf("slot = %#x, want 0", params[0])
		}
		copy(b[params[0]:], ev[:])
		return []uint64{1}, nil
	})

	sig := Signature{Name: "SDL_PollEvent", Params: []Param{{Class: Out, Kind: record.KindEvent}}}
	if _, err := m.Dispatch(context.Background(), sig, pollEvent, []uint64{128}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ev[:], []byte(a[128:128+record.EventWidth])); diff != "" {
		t.Errorf("event (-want +got):\n%s", diff)
	}
}

func TestDispatch_ArgumentCount(t *testing.T) {
	f := newFixture(56)
	var calls []recordedCall
	sig := Signature{Name: "SDL_Delay", Params: []Param{{Class: Scalar}}}

	_, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, nil, nil), nil)
	if !errors.Is(err, &bridgeerrors.Error{Phase: bridgeerrors.PhaseDispatch, Kind: bridgeerrors.KindArgumentCount}) {
		t.Errorf("unexpected error: %v", err)
	}
	if len(calls) != 0 {
		t.Error("target called with wrong argument count")
	}
}

func TestDispatch_ScalarOnlyAllocatesNothing(t *testing.T) {
	f := newFixture(56)
	var calls []recordedCall
	sig := Signature{Name: "SDL_SetRenderDrawColor", Params: []Param{
		{Class: Scalar}, {Class: Scalar}, {Class: Scalar}, {Class: Scalar}, {Class: Scalar},
	}}

	results, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, []uint64{7}, nil), []uint64{1, 255, 128, 0, 255})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{1, 255, 128, 0, 255}, calls[0].params); diff != "" {
		t.Errorf("params (-want +got):\n%s", diff)
	}
	if results[0] != 7 {
		t.Errorf("result = %d", results[0])
	}
	st := f.m.Allocator().Stats()
	if st.Allocations != 0 || st.Wraps != 0 {
		t.Errorf("scalar call touched the ring: %+v", st)
	}
}

type countingObserver struct {
	calls  []string
	copied map[Direction]uint32
}

func (o *countingObserver) Called(name string) { o.calls = append(o.calls, name) }
func (o *countingObserver) Copied(dir Direction, n uint32) {
	if o.copied == nil {
		o.copied = make(map[Direction]uint32)
	}
	o.copied[dir] += n
}

func TestDispatch_Observer(t *testing.T) {
	f := newFixture(56)
	obs := &countingObserver{}
	f.m.SetObserver(obs)

	var calls []recordedCall
	sig := Signature{Name: "SDL_RenderCopyEx", Params: []Param{
		{Class: In, Kind: record.KindRect},
		{Class: Out, Kind: record.KindRect},
	}}
	if _, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, nil, nil), []uint64{16, 32}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"SDL_RenderCopyEx"}, obs.calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if obs.copied[AToB] != 16 || obs.copied[BToA] != 16 {
		t.Errorf("copied = %v", obs.copied)
	}
}

func TestDispatch_DiscardNotForwarded(t *testing.T) {
	f := newFixture(56)
	var calls []recordedCall
	sig := Signature{Name: "IMG_Init", Params: []Param{{Class: Discard}}}

	results, err := f.m.Dispatch(context.Background(), sig, recorder(&calls, []uint64{2}, nil), []uint64{0x3})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls[0].params) != 0 {
		t.Errorf("discarded parameter forwarded: %v", calls[0].params)
	}
	if results[0] != 2 {
		t.Errorf("result = %d", results[0])
	}
}

func TestSignature(t *testing.T) {
	sig := Signature{Name: "SDL_RenderCopyEx", Params: []Param{
		{Class: Scalar}, {Class: Scalar},
		{Class: In, Kind: record.KindRect}, {Class: In, Kind: record.KindRect},
		{Class: Scalar}, {Class: Scalar}, {Class: Scalar},
	}}
	if sig.Width() != 32 {
		t.Errorf("Width = %d, want 32", sig.Width())
	}
	want := "SDL_RenderCopyEx(scalar, scalar, in:rect, in:rect, scalar, scalar, scalar)"
	if sig.String() != want {
		t.Errorf("String = %q", sig.String())
	}
}
