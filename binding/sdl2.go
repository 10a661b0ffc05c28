package binding

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/record"
)

// Import namespaces used by the SDL2 table.
const (
	NamespaceSDL2  = "system:SDL2"
	NamespaceImage = "system:SDL2_image"
)

var (
	i32 = Scalar(api.ValueTypeI32)
	f64 = Scalar(api.ValueTypeF64)

	resultI32 = []api.ValueType{api.ValueTypeI32}
)

// SDL2 returns the binding table for a guest that links against SDL2 and
// SDL2_image, forwarding to a host module that exports "_"-prefixed wrappers.
//
// The centre point of SDL_RenderCopyEx is passed through unstaged and must be null.
// SDL_GetError returns a pointer into the host module's memory.
func SDL2() *Table {
	return MustTable(
		Descriptor{Module: NamespaceImage, Name: "IMG_Init", Target: "_Image_Init",
			Params: []Spec{Drop(api.ValueTypeI32)}, Results: resultI32},
		Descriptor{Module: NamespaceImage, Name: "IMG_Load", Target: "_Image_Load",
			Params: []Spec{In(record.KindShortString)}, Results: resultI32},
		Descriptor{Module: NamespaceImage, Name: "IMG_Quit", Target: "_Image_Quit"},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_Init", Target: "_Init",
			Params: []Spec{i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_Quit", Target: "_Quit"},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_CreateWindow", Target: "_CreateWindow",
			Params: []Spec{In(record.KindShortString), i32, i32, i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_DestroyWindow", Target: "_DestroyWindow",
			Params: []Spec{i32}},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_CreateRenderer", Target: "_CreateRenderer",
			Params: []Spec{i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_DestroyRenderer", Target: "_DestroyRenderer",
			Params: []Spec{i32}},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderFillRect", Target: "_RenderFillRect",
			Params: []Spec{i32, In(record.KindRect)}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_SetRenderDrawColor", Target: "_SetRenderDrawColor",
			Params: []Spec{i32, i32, i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderPresent", Target: "_RenderPresent",
			Params: []Spec{i32}},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderClear", Target: "_RenderClear",
			Params: []Spec{i32}, Results: resultI32},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderCopyEx", Target: "_RenderCopyEx",
			Params: []Spec{i32, i32, In(record.KindRect), In(record.KindRect), f64, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderCopy", Target: "_RenderCopy",
			Params: []Spec{i32, i32, In(record.KindRect), In(record.KindRect)}, Results: resultI32},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_SetTextureColorMod", Target: "_SetTextureColorMod",
			Params: []Spec{i32, i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_SetRenderTarget", Target: "_SetRenderTarget",
			Params: []Spec{i32, i32}, Results: resultI32},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_CreateTexture", Target: "_CreateTexture",
			Params: []Spec{i32, i32, i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_CreateTextureFromSurface", Target: "_CreateTextureFromSurface",
			Params: []Spec{i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_DestroyTexture", Target: "_DestroyTexture",
			Params: []Spec{i32}},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_GetError", Target: "_GetError",
			Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderSetLogicalSize", Target: "_RenderSetLogicalSize",
			Params: []Spec{i32, i32, i32}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_Delay", Target: "_Delay",
			Params: []Spec{i32}},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_FreeSurface", Target: "_FreeSurface",
			Params: []Spec{i32}},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_RenderDrawRect", Target: "_RenderDrawRect",
			Params: []Spec{i32, In(record.KindRect)}, Results: resultI32},

		Descriptor{Module: NamespaceSDL2, Name: "SDL_PollEvent", Target: "_PollEvent",
			Params: []Spec{Out(record.KindEvent)}, Results: resultI32},
		Descriptor{Module: NamespaceSDL2, Name: "SDL_GetRenderDrawColor", Target: "_GetRenderDrawColor",
			Params: []Spec{i32, Out(record.KindByte), Out(record.KindByte), Out(record.KindByte)}, Results: resultI32},
	)
}
