// Package binding describes which guest imports are bridged and how.
//
// A Table holds one Descriptor per bound function: the import it satisfies, the
// host module export it forwards to, and an ordered parameter list where every
// entry is a scalar, an input record pointer, an output record pointer, or a
// parameter the target does not take:
//
//	binding.Descriptor{
//		Module: "system:SDL2", Name: "SDL_RenderFillRect", Target: "_RenderFillRect",
//		Params:  []binding.Spec{binding.Scalar(api.ValueTypeI32), binding.In(record.KindRect)},
//		Results: []api.ValueType{api.ValueTypeI32},
//	}
//
// Tables are built once at startup and never mutated. SDL2 returns the built-in
// table; LoadManifestFile reads one from YAML.
package binding
