// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Staging and commit failures carry the memory space in Path so a trap message points
// at the side of the boundary that was out of range.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispatch, errors.KindTargetCall).
//		Path("system:SDL2", "SDL_PollEvent").
//		Cause(callErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseStage, "A", ptr, 16, memSize)
//	err := errors.RegionTooSmall("event record", 56, 32)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
