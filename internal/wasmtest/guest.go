package wasmtest

import (
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/binding"
)

// Guest memory layout used by SDLGuest.
const (
	GuestRect    = 256  // Rect{1, 2, 3, 4}
	GuestString  = 512  // "abc"
	GuestEvent   = 1024 // PollEvent output
	GuestColor   = 100  // three GetRenderDrawColor outputs
	GuestFrames  = 4000 // frame counter
	GuestEnded   = 4004 // set to 1 by _end
	GuestStarted = 4008 // set to 1 by _start
)

// SDLGuest builds a guest importing part of binding.SDL2. Each export makes
// one bridged call and reports what arrived in its own memory:
//
//	poll()     PollEvent(GuestEvent), returns the event type read back
//	pollNull() PollEvent(0), returns the call result
//	color()    GetRenderDrawColor(5, GuestColor...), returns the channel sum
//	fill()     RenderFillRect(7, GuestRect), returns the call result
//	fillOOB()  RenderFillRect(7, end of memory - 8)
//	image()    IMG_Load(GuestString), returns the call result
//	init()     IMG_Init(42), returns the call result
//	error()    SDL_GetError(), returns the call result
//
// It also exports the boot entry points. default_context_ptr returns ctx and
// _wasm_init returns ctx != 0. _animation_frame returns 0 once it has run
// frames times.
func SDLGuest(ctx uint32, frames int32) []byte {
	i32 := api.ValueTypeI32
	one := []api.ValueType{i32}
	two := []api.ValueType{i32, i32}
	four := []api.ValueType{i32, i32, i32, i32}

	m := New().Memory(1)
	pollEvent := m.Import(binding.NamespaceSDL2, "SDL_PollEvent", one, one)
	drawColor := m.Import(binding.NamespaceSDL2, "SDL_GetRenderDrawColor", four, one)
	fillRect := m.Import(binding.NamespaceSDL2, "SDL_RenderFillRect", two, one)
	getError := m.Import(binding.NamespaceSDL2, "SDL_GetError", nil, one)
	imgLoad := m.Import(binding.NamespaceImage, "IMG_Load", one, one)
	imgInit := m.Import(binding.NamespaceImage, "IMG_Init", one, one)

	m.Func("poll", nil, one, nil,
		I32Const(GuestEvent), Call(pollEvent), Drop(),
		I32Const(GuestEvent), I32Load(0))
	m.Func("pollNull", nil, one, nil, I32Const(0), Call(pollEvent))
	m.Func("color", nil, one, nil,
		I32Const(5), I32Const(GuestColor), I32Const(GuestColor+1), I32Const(GuestColor+2),
		Call(drawColor), Drop(),
		I32Const(GuestColor), I32Load8U(0),
		I32Const(GuestColor), I32Load8U(1), I32Add(),
		I32Const(GuestColor), I32Load8U(2), I32Add())
	m.Func("fill", nil, one, nil, I32Const(7), I32Const(GuestRect), Call(fillRect))
	m.Func("fillOOB", nil, one, nil, I32Const(7), I32Const(pageSize-8), Call(fillRect))
	m.Func("image", nil, one, nil, I32Const(GuestString), Call(imgLoad))
	m.Func("init", nil, one, nil, I32Const(42), Call(imgInit))
	m.Func("error", nil, one, nil, Call(getError))

	m.Func("_start", nil, nil, nil, StoreConst(GuestStarted, 1))
	m.Func("default_context_ptr", nil, one, nil, I32Const(int32(ctx)))
	m.Func("_wasm_init", one, one, nil, LocalGet(0), I32Const(0), I32Ne())
	m.Func("_animation_frame", one, one, nil,
		I32Const(GuestFrames),
		I32Const(GuestFrames), I32Load(0), I32Const(1), I32Add(),
		I32Store(0),
		I32Const(GuestFrames), I32Load(0), I32Const(frames), I32LtU())
	m.Func("_end", nil, nil, nil, StoreConst(GuestEnded, 1))

	rect := make([]byte, 16)
	for i, v := range []uint32{1, 2, 3, 4} {
		binary.LittleEndian.PutUint32(rect[i*4:], v)
	}
	m.Data(GuestRect, rect)
	m.Data(GuestString, []byte("abc\x00"))
	return m.Bytes()
}
