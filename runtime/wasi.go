package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/wasm-bridge/errors"
)

// instantiateWASI makes wasi_snapshot_preview1 available to both modules.
// Toolchains that emit a libc link against it even when the program does no I/O.
func (r *Runtime) instantiateWASI(ctx context.Context) error {
	if r.runtime.Module(wasi_snapshot_preview1.ModuleName) != nil {
		return nil
	}
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
		return errors.Instantiation(wasi_snapshot_preview1.ModuleName, err)
	}
	return nil
}
