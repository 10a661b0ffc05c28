package linker

import (
	"context"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/marshal"
	"github.com/wippyai/wasm-bridge/memory"
	"github.com/wippyai/wasm-bridge/ring"
)

// Options configures linker behavior.
type Options struct {
	// RingBaseExport names the host export returning the ring base offset.
	RingBaseExport string
	// RingSizeExport names the host export returning the ring size in bytes.
	RingSizeExport string
}

// DefaultOptions returns the accessor names exported by the SDL2 host build.
func DefaultOptions() Options {
	return Options{
		RingBaseExport: "_get_copy_buffer",
		RingSizeExport: "_copy_buffer_size",
	}
}

// Linker holds the host modules built for one binding table.
type Linker struct {
	runtime    wazero.Runtime
	host       api.Module
	table      *binding.Table
	marshaller *marshal.Marshaller
	modules    []api.Module
	options    Options
}

// Link reads the ring region from host, checks that every binding target is
// exported with the expected signature and instantiates the import namespaces
// of table into rt.
func Link(ctx context.Context, rt wazero.Runtime, host api.Module, table *binding.Table, opts Options) (*Linker, error) {
	if host == nil {
		return nil, errors.NotInitialized(errors.PhaseLinking, "host module")
	}
	if table == nil {
		return nil, errors.NotInitialized(errors.PhaseLinking, "binding table")
	}
	defaults := DefaultOptions()
	if opts.RingBaseExport == "" {
		opts.RingBaseExport = defaults.RingBaseExport
	}
	if opts.RingSizeExport == "" {
		opts.RingSizeExport = defaults.RingSizeExport
	}

	hostMem := host.Memory()
	if hostMem == nil {
		return nil, errors.NotFound(errors.PhaseLinking, "memory", host.Name())
	}

	region, err := ReadRegion(ctx, host, opts)
	if err != nil {
		return nil, err
	}
	if err := region.Validate(table.RequiredWidths()...); err != nil {
		return nil, err
	}
	if region.End() > uint64(hostMem.Size()) {
		return nil, errors.New(errors.PhaseSetup, errors.KindOutOfBounds).
			Value(region).
			Detail("ring %s exceeds host memory of %d bytes", region, hostMem.Size()).
			Build()
	}

	targets, err := resolveTargets(host, table)
	if err != nil {
		return nil, err
	}

	view := memory.NewView(nil, memory.WrapMemory(hostMem))
	l := &Linker{
		runtime:    rt,
		host:       host,
		table:      table,
		marshaller: marshal.New(view, ring.New(region)),
		options:    opts,
	}

	for _, ns := range table.Namespaces() {
		mod, err := l.instantiate(ctx, ns, targets)
		if err != nil {
			_ = l.Close(ctx)
			return nil, err
		}
		l.modules = append(l.modules, mod)
	}

	Logger().Debug("linked bridge",
		zap.String("host", host.Name()),
		zap.Stringer("ring", region),
		zap.Int("imports", table.Len()),
		zap.Strings("namespaces", table.Namespaces()))

	return l, nil
}

// ReadRegion calls the two ring accessors exported by host.
func ReadRegion(ctx context.Context, host api.Module, opts Options) (ring.Region, error) {
	base, err := callAccessor(ctx, host, opts.RingBaseExport)
	if err != nil {
		return ring.Region{}, err
	}
	size, err := callAccessor(ctx, host, opts.RingSizeExport)
	if err != nil {
		return ring.Region{}, err
	}
	return ring.Region{Base: base, Size: size}, nil
}

func callAccessor(ctx context.Context, host api.Module, name string) (uint32, error) {
	fn := host.ExportedFunction(name)
	if fn == nil {
		return 0, errors.NotFound(errors.PhaseLinking, "export", name)
	}
	def := fn.Definition()
	if len(def.ParamTypes()) != 0 || !slices.Equal(def.ResultTypes(), []api.ValueType{api.ValueTypeI32}) {
		return 0, errors.New(errors.PhaseLinking, errors.KindTypeMismatch).
			Path(name).
			Detail("accessor must be () -> i32").
			Build()
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseLinking, errors.KindTargetCall, err, name)
	}
	return api.DecodeU32(results[0]), nil
}

// resolveTargets looks up every binding target on host. All missing targets are
// reported together.
func resolveTargets(host api.Module, table *binding.Table) (map[string]api.Function, error) {
	targets := make(map[string]api.Function, table.Len())
	var missing []string
	for _, d := range table.Descriptors() {
		fn := host.ExportedFunction(d.Target)
		if fn == nil {
			missing = append(missing, d.Key())
			continue
		}
		def := fn.Definition()
		if !slices.Equal(def.ParamTypes(), d.TargetParamTypes()) || !slices.Equal(def.ResultTypes(), d.Results) {
			return nil, errors.New(errors.PhaseLinking, errors.KindTypeMismatch).
				Path(d.Key(), d.Target).
				Detail("target is %s, binding expects %s",
					signatureString(def.ParamTypes(), def.ResultTypes()),
					signatureString(d.TargetParamTypes(), d.Results)).
				Build()
		}
		targets[d.Key()] = fn
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingImportsError(missing)
	}
	return targets, nil
}

func (l *Linker) instantiate(ctx context.Context, namespace string, targets map[string]api.Function) (api.Module, error) {
	builder := l.runtime.NewHostModuleBuilder(namespace)
	for _, d := range l.table.Namespace(namespace) {
		builder.NewFunctionBuilder().
			WithName(d.Target).
			WithGoModuleFunction(l.handler(d, targets[d.Key()]), d.ParamTypes(), d.Results).
			Export(d.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Instantiation(namespace, err)
	}
	return mod, nil
}

// handler bridges one import. Space A is the memory of whichever module made
// the call. Marshalling errors trap the caller.
func (l *Linker) handler(d binding.Descriptor, target api.Function) api.GoModuleFunc {
	sig := d.Signature()
	n := len(d.Params)
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		m := l.marshaller.WithA(memory.WrapMemory(mod.Memory()))
		args := make([]uint64, n)
		copy(args, stack[:n])

		results, err := m.Dispatch(ctx, sig, target, args)
		if err != nil {
			Logger().Debug("bridged call failed",
				zap.String("import", d.Key()),
				zap.String("target", d.Target),
				zap.Error(err))
			panic(err)
		}
		copy(stack, results)
	}
}

// Marshaller returns the marshaller shared by every bridged call.
func (l *Linker) Marshaller() *marshal.Marshaller {
	return l.marshaller
}

// Region returns the ring region read at link time.
func (l *Linker) Region() ring.Region {
	return l.marshaller.Allocator().Region()
}

// Table returns the binding table.
func (l *Linker) Table() *binding.Table {
	return l.table
}

// Options returns the configuration.
func (l *Linker) Options() Options {
	return l.options
}

// Close closes the host modules created by Link. The host module itself is
// left open.
func (l *Linker) Close(ctx context.Context) error {
	var first error
	for _, mod := range l.modules {
		if err := mod.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	l.modules = nil
	return first
}

func signatureString(params, results []api.ValueType) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(p)
	}
	s += ") -> ("
	for i, r := range results {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(r)
	}
	return s + ")"
}
