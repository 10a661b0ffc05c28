package runtime

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/errors"
)

// Boot runs the guest's start and init exports. It reports false when init
// returned zero, in which case no frames should be run.
func (r *Runtime) Boot(ctx context.Context) (bool, error) {
	if r.guest == nil {
		return false, errors.NotInitialized(errors.PhaseRuntime, "guest module")
	}
	if r.booted {
		return true, nil
	}
	entry := r.cfg.Entry

	if entry.Start != "" && r.guest.ExportedFunction(entry.Start) != nil {
		if _, err := r.Call(ctx, entry.Start); err != nil {
			return false, err
		}
	}

	res, err := r.Call(ctx, entry.Context)
	if err != nil {
		return false, err
	}
	if len(res) == 0 {
		return false, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Path(GuestModuleName, entry.Context).
			Detail("context export returned no value").
			Build()
	}
	r.ctxPtr = res[0]

	res, err = r.Call(ctx, entry.Init, r.ctxPtr)
	if err != nil {
		return false, err
	}
	if len(res) == 0 || api.DecodeU32(res[0]) == 0 {
		Logger().Info("guest init declined", zap.Uint64("context", r.ctxPtr))
		return false, nil
	}
	r.booted = true
	Logger().Debug("guest booted", zap.Uint64("context", r.ctxPtr))
	return true, nil
}

// Frame runs one animation frame and reports whether the guest wants another.
func (r *Runtime) Frame(ctx context.Context) (bool, error) {
	if !r.booted {
		return false, errors.NotInitialized(errors.PhaseRuntime, "boot")
	}
	res, err := r.Call(ctx, r.cfg.Entry.Frame, r.ctxPtr)
	if err != nil {
		return false, err
	}
	r.frames++
	return len(res) > 0 && api.DecodeU32(res[0]) != 0, nil
}

// Loop calls Frame every interval until the guest returns zero or ctx is done,
// then calls the end export. A zero interval runs frames back to back.
func (r *Runtime) Loop(ctx context.Context, interval time.Duration) error {
	if !r.booted {
		return errors.NotInitialized(errors.PhaseRuntime, "boot")
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var loopErr error
	for loopErr == nil {
		more, err := r.Frame(ctx)
		if err != nil {
			loopErr = err
			break
		}
		if !more {
			break
		}
		loopErr = wait(ctx, tick)
	}

	Logger().Debug("frame loop finished", zap.Uint64("frames", r.frames), zap.Error(loopErr))

	// The end export still runs after cancellation, so it gets a live context.
	if err := r.end(context.WithoutCancel(ctx)); err != nil && loopErr == nil {
		loopErr = err
	}
	return loopErr
}

func wait(ctx context.Context, tick <-chan time.Time) error {
	if tick == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tick:
		return nil
	}
}

func (r *Runtime) end(ctx context.Context) error {
	if r.ended {
		return nil
	}
	r.ended = true
	name := r.cfg.Entry.End
	if name == "" || r.guest.ExportedFunction(name) == nil {
		return nil
	}
	_, err := r.Call(ctx, name)
	return err
}

// Run boots the guest and, if init accepted, runs the frame loop.
func (r *Runtime) Run(ctx context.Context, interval time.Duration) error {
	ok, err := r.Boot(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.Loop(ctx, interval)
}
