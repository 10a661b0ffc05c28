package runtime

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/config"
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/linker"
	"github.com/wippyai/wasm-bridge/metrics"
	"github.com/wippyai/wasm-bridge/ring"
)

// Module names the two sides are instantiated under.
const (
	HostModuleName  = "host"
	GuestModuleName = "guest"
)

// Runtime owns one wazero runtime holding a host, its bridge and a guest.
type Runtime struct {
	runtime wazero.Runtime
	host    api.Module
	guest   api.Module
	linker  *linker.Linker
	metrics *metrics.Metrics
	cfg     config.Config
	ctxPtr  uint64
	frames  uint64
	booted  bool
	ended   bool
}

// Stats is a snapshot of bridge activity.
type Stats struct {
	Ring   ring.Stats
	Frames uint64
	Booted bool
	Ended  bool
}

// New creates a wazero runtime configured by cfg. WASI preview1 is
// instantiated when cfg.WASI is set.
func New(ctx context.Context, cfg config.Config) (*Runtime, error) {
	rc := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := &Runtime{
		runtime: wazero.NewRuntimeWithConfig(ctx, rc),
		cfg:     cfg,
	}
	if cfg.WASI {
		if err := r.instantiateWASI(ctx); err != nil {
			_ = r.runtime.Close(ctx)
			return nil, err
		}
	}
	return r, nil
}

// Close releases the runtime and every module in it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Config returns the configuration the runtime was created with.
func (r *Runtime) Config() config.Config {
	return r.cfg
}

// Wazero returns the underlying wazero runtime.
func (r *Runtime) Wazero() wazero.Runtime {
	return r.runtime
}

// LoadHost instantiates the host module and runs its init export
// (cfg.Entry.HostInit) when the module has one. It must be loaded before Link,
// which reads the ring region the init export may have set up.
func (r *Runtime) LoadHost(ctx context.Context, wasm []byte) error {
	if r.host != nil {
		return errors.Duplicate(errors.PhaseLoad, "module", HostModuleName)
	}
	mod, err := r.instantiate(ctx, HostModuleName, wasm)
	if err != nil {
		return err
	}
	if name := r.cfg.Entry.HostInit; name != "" {
		if fn := mod.ExportedFunction(name); fn != nil {
			if _, err := fn.Call(ctx); err != nil {
				_ = mod.Close(ctx)
				return errors.New(errors.PhaseLoad, errors.KindTargetCall).
					Path(HostModuleName, name).
					Cause(err).
					Detail("host init failed").
					Build()
			}
			Logger().Debug("host initialized", zap.String("export", name))
		}
	}
	r.host = mod
	Logger().Debug("host loaded", zap.Int("bytes", len(wasm)))
	return nil
}

// Link reads the ring region from the host and instantiates the import
// namespaces of table.
func (r *Runtime) Link(ctx context.Context, table *binding.Table) error {
	if r.host == nil {
		return errors.NotInitialized(errors.PhaseLinking, "host module")
	}
	if r.linker != nil {
		return errors.New(errors.PhaseLinking, errors.KindDuplicate).
			Detail("bridge already linked").
			Build()
	}
	l, err := linker.Link(ctx, r.runtime, r.host, table, linker.Options{
		RingBaseExport: r.cfg.RingBaseExport,
		RingSizeExport: r.cfg.RingSizeExport,
	})
	if err != nil {
		return err
	}
	r.linker = l
	if r.metrics != nil {
		r.attach(r.metrics)
	}
	Logger().Info("bridge linked",
		zap.Stringer("ring", l.Region()),
		zap.Int("imports", table.Len()))
	return nil
}

// LoadGuest compiles the guest, checks its imports against the linked table and
// instantiates it without running its start function.
func (r *Runtime) LoadGuest(ctx context.Context, wasm []byte) error {
	if r.linker == nil {
		return errors.NotInitialized(errors.PhaseLoad, "bridge")
	}
	if r.guest != nil {
		return errors.Duplicate(errors.PhaseLoad, "module", GuestModuleName)
	}
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Load("compile guest", err)
	}
	if err := linker.CheckImports(compiled, r.linker.Table()); err != nil {
		_ = compiled.Close(ctx)
		return err
	}
	if unbound := linker.UnboundImports(compiled, r.linker.Table()); len(unbound) > 0 {
		Logger().Debug("guest imports outside the bridge", zap.Strings("imports", unbound))
	}
	mod, err := r.runtime.InstantiateModule(ctx, compiled, moduleConfig(GuestModuleName))
	if err != nil {
		return errors.Instantiation(GuestModuleName, err)
	}
	r.guest = mod
	Logger().Debug("guest loaded", zap.Int("bytes", len(wasm)))
	return nil
}

func (r *Runtime) instantiate(ctx context.Context, name string, wasm []byte) (api.Module, error) {
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile "+name, err)
	}
	mod, err := r.runtime.InstantiateModule(ctx, compiled, moduleConfig(name))
	if err != nil {
		return nil, errors.Instantiation(name, err)
	}
	return mod, nil
}

// moduleConfig names a module and disables automatic start functions; the
// boot sequence calls them explicitly.
func moduleConfig(name string) wazero.ModuleConfig {
	return wazero.NewModuleConfig().WithName(name).WithStartFunctions()
}

// Instrument reports calls, staged bytes and ring activity to m.
func (r *Runtime) Instrument(m *metrics.Metrics) {
	r.metrics = m
	if r.linker != nil {
		r.attach(m)
	}
}

func (r *Runtime) attach(m *metrics.Metrics) {
	mr := r.linker.Marshaller()
	mr.SetObserver(m)
	mr.Allocator().SetObserver(m)
}

// Host returns the host module, or nil before LoadHost.
func (r *Runtime) Host() api.Module {
	return r.host
}

// Guest returns the guest module, or nil before LoadGuest.
func (r *Runtime) Guest() api.Module {
	return r.guest
}

// Linker returns the bridge, or nil before Link.
func (r *Runtime) Linker() *linker.Linker {
	return r.linker
}

// Exports lists the guest's exported functions sorted by name.
func (r *Runtime) Exports() []api.FunctionDefinition {
	if r.guest == nil {
		return nil
	}
	defs := r.guest.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]api.FunctionDefinition, len(names))
	for i, name := range names {
		out[i] = defs[name]
	}
	return out
}

// Call invokes a guest export directly.
func (r *Runtime) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn, err := r.guestFunc(name)
	if err != nil {
		return nil, err
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindTargetCall).
			Path(GuestModuleName, name).
			Cause(err).
			Detail("call failed").
			Build()
	}
	return results, nil
}

func (r *Runtime) guestFunc(name string) (api.Function, error) {
	if r.guest == nil {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "guest module")
	}
	fn := r.guest.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	return fn, nil
}

// Stats returns a snapshot of ring and frame counters.
func (r *Runtime) Stats() Stats {
	s := Stats{Frames: r.frames, Booted: r.booted, Ended: r.ended}
	if r.linker != nil {
		s.Ring = r.linker.Marshaller().Allocator().Stats()
	}
	return s
}
