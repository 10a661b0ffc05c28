package wasmtest

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/record"
	"github.com/wippyai/wasm-bridge/ring"
)

const pageSize = 65536

// Values reported by the SDLHost targets.
const (
	EventType      = 0x300
	EventTimestamp = 1234
	ImageInit      = 7
	ErrorOffset    = 16
	ErrorText      = "no error"
	// RingCell holds the ring base in InitHost until _initialize has run.
	RingCell = 8
)

// DrawColor is what SDLHost's _GetRenderDrawColor writes to its three outputs.
var DrawColor = record.Color{R: 10, G: 20, B: 30, A: 0xFF}

// Host builds a host module exporting memory, the ring accessors and one
// function per distinct binding target. Targets without an entry in impl
// return zero values.
func Host(table *binding.Table, region ring.Region, impl map[string][]byte) []byte {
	return host(table, region, I32Const(int32(region.Base)), impl).Bytes()
}

// base is the body of _get_copy_buffer.
func host(table *binding.Table, region ring.Region, base []byte, impl map[string][]byte) *Module {
	m := New().Memory(uint32(region.End()/pageSize) + 1)
	i32 := []api.ValueType{api.ValueTypeI32}

	m.Func("_get_copy_buffer", nil, i32, nil, base)
	m.Func("_copy_buffer_size", nil, i32, nil, I32Const(int32(region.Size)))

	seen := make(map[string]bool)
	for _, d := range table.Descriptors() {
		if seen[d.Target] {
			continue
		}
		seen[d.Target] = true

		body, ok := impl[d.Target]
		if !ok {
			var zero bytes.Buffer
			for _, r := range d.Results {
				zero.Write(Zero(r))
			}
			body = zero.Bytes()
		}
		m.Func(d.Target, d.TargetParamTypes(), d.Results, nil, body)
	}
	return m
}

// SDLHost builds a host for binding.SDL2 with working targets for the
// pointer-taking calls the tests exercise:
//
//	_PollEvent          writes EventType and EventTimestamp, returns 1
//	_GetRenderDrawColor writes DrawColor's R, G and B to its outputs, returns 0
//	_RenderFillRect     returns x+y+w+h of its rect
//	_RenderDrawRect     same as _RenderFillRect
//	_Image_Load         returns the first byte of its string
//	_Image_Init         returns ImageInit
//	_GetError           returns ErrorOffset, where ErrorText is stored
func SDLHost(region ring.Region) []byte {
	return sdlHost(region, I32Const(int32(region.Base))).Bytes()
}

// InitHost is SDLHost with a reactor-style _initialize export. Its
// _get_copy_buffer reads the ring base from RingCell, which only _initialize
// sets, so the accessor reports 0 until the module has been initialized.
func InitHost(region ring.Region) []byte {
	m := sdlHost(region, Concat(I32Const(RingCell), I32Load(0)))
	m.Func("_initialize", nil, nil, nil, StoreConst(RingCell, int32(region.Base)))
	return m.Bytes()
}

func sdlHost(region ring.Region, base []byte) *Module {
	rectSum := Concat(
		LocalGet(1), I32Load(0),
		LocalGet(1), I32Load(4), I32Add(),
		LocalGet(1), I32Load(8), I32Add(),
		LocalGet(1), I32Load(12), I32Add(),
	)
	impl := map[string][]byte{
		"_PollEvent": Concat(
			LocalGet(0), I32Const(EventType), I32Store(0),
			LocalGet(0), I32Const(EventTimestamp), I32Store(4),
			I32Const(1),
		),
		"_GetRenderDrawColor": Concat(
			LocalGet(1), I32Const(int32(DrawColor.R)), I32Store8(0),
			LocalGet(2), I32Const(int32(DrawColor.G)), I32Store8(0),
			LocalGet(3), I32Const(int32(DrawColor.B)), I32Store8(0),
			I32Const(0),
		),
		"_RenderFillRect": rectSum,
		"_RenderDrawRect": rectSum,
		"_Image_Load":     Concat(LocalGet(0), I32Load8U(0)),
		"_Image_Init":     I32Const(ImageInit),
		"_GetError":       I32Const(ErrorOffset),
	}
	m := host(binding.SDL2(), region, base, impl)
	m.Data(ErrorOffset, append([]byte(ErrorText), 0))
	return m
}

// Concat joins instruction sequences.
func Concat(instrs ...[]byte) []byte {
	return bytes.Join(instrs, nil)
}
