package binding

import (
	"io"
	"os"

	"github.com/tetratelabs/wazero/api"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-bridge/errors"
)

// Manifest is the YAML form of a binding table.
//
//	imports:
//	  - module: system:SDL2
//	    name: SDL_PollEvent
//	    target: _PollEvent
//	    params: [out:event]
//	    results: [i32]
type Manifest struct {
	Imports []ManifestImport `yaml:"imports"`
}

// ManifestImport is one bound function in a manifest.
type ManifestImport struct {
	Module  string   `yaml:"module"`
	Name    string   `yaml:"name"`
	Target  string   `yaml:"target"`
	Params  []string `yaml:"params,omitempty"`
	Results []string `yaml:"results,omitempty"`
}

// LoadManifest decodes a YAML manifest from r and builds its table.
func LoadManifest(r io.Reader) (*Table, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, errors.ParseFailed("binding manifest", err)
	}
	return m.Table()
}

// LoadManifestFile reads and decodes the manifest at path.
func LoadManifestFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindNotFound, err, "open "+path)
	}
	defer f.Close()
	return LoadManifest(f)
}

// Table converts m into a validated binding table.
func (m *Manifest) Table() (*Table, error) {
	descs := make([]Descriptor, 0, len(m.Imports))
	for _, imp := range m.Imports {
		d := Descriptor{Module: imp.Module, Name: imp.Name, Target: imp.Target}
		for _, p := range imp.Params {
			spec, err := ParseSpec(p)
			if err != nil {
				return nil, withPath(err, d.Key())
			}
			d.Params = append(d.Params, spec)
		}
		for _, r := range imp.Results {
			t, ok := parseValueType(r)
			if !ok {
				return nil, errors.InvalidData(errors.PhaseManifest, []string{d.Key()}, "unknown result type "+r)
			}
			d.Results = append(d.Results, t)
		}
		descs = append(descs, d)
	}
	return NewTable(descs...)
}

// ManifestOf renders t back into manifest form.
func ManifestOf(t *Table) *Manifest {
	m := &Manifest{Imports: make([]ManifestImport, 0, t.Len())}
	for _, d := range t.Descriptors() {
		imp := ManifestImport{Module: d.Module, Name: d.Name, Target: d.Target}
		for _, p := range d.Params {
			imp.Params = append(imp.Params, p.String())
		}
		for _, r := range d.Results {
			imp.Results = append(imp.Results, api.ValueTypeName(r))
		}
		m.Imports = append(m.Imports, imp)
	}
	return m
}

func withPath(err error, key string) error {
	if e, ok := err.(*errors.Error); ok {
		located := *e
		located.Path = []string{key}
		return &located
	}
	return err
}
