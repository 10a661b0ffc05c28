package linker

import (
	"slices"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/errors"
)

// CheckImports reports the function imports of compiled that fall in a bound
// namespace but have no binding, or whose signature differs from the binding.
// Imports from other namespaces are left to other providers such as WASI.
func CheckImports(compiled wazero.CompiledModule, table *binding.Table) error {
	bound := make(map[string]bool)
	for _, ns := range table.Namespaces() {
		bound[ns] = true
	}

	var missing []string
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if !bound[module] {
			continue
		}
		d, ok := table.Lookup(module, name)
		if !ok {
			missing = append(missing, module+"#"+name)
			continue
		}
		if !slices.Equal(def.ParamTypes(), d.ParamTypes()) || !slices.Equal(def.ResultTypes(), d.Results) {
			return errors.New(errors.PhaseLinking, errors.KindTypeMismatch).
				Path(d.Key()).
				Detail("guest imports %s, binding declares %s",
					signatureString(def.ParamTypes(), def.ResultTypes()),
					signatureString(d.ParamTypes(), d.Results)).
				Build()
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingImportsError(missing)
	}
	return nil
}

// UnboundImports lists function imports of compiled in namespaces the table
// does not cover, as "module#name".
func UnboundImports(compiled wazero.CompiledModule, table *binding.Table) []string {
	bound := make(map[string]bool)
	for _, ns := range table.Namespaces() {
		bound[ns] = true
	}
	var out []string
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if !bound[module] {
			out = append(out, module+"#"+name)
		}
	}
	return out
}
