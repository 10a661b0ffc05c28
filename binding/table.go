package binding

import (
	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/record"
)

// Table is the fixed set of bound functions. It is immutable once built.
type Table struct {
	index       map[string]int
	descriptors []Descriptor
	namespaces  []string
}

// NewTable validates descs and builds a table preserving their order.
func NewTable(descs ...Descriptor) (*Table, error) {
	t := &Table{
		index:       make(map[string]int, len(descs)),
		descriptors: make([]Descriptor, 0, len(descs)),
	}
	seenNS := make(map[string]bool)

	for _, d := range descs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		key := d.Key()
		if _, dup := t.index[key]; dup {
			return nil, errors.Duplicate(errors.PhaseManifest, "binding", key)
		}

		d.Params = append([]Spec(nil), d.Params...)
		d.Results = append(d.Results[:0:0], d.Results...)

		t.index[key] = len(t.descriptors)
		t.descriptors = append(t.descriptors, d)
		if !seenNS[d.Module] {
			seenNS[d.Module] = true
			t.namespaces = append(t.namespaces, d.Module)
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. For static tables.
func MustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of bound functions.
func (t *Table) Len() int {
	return len(t.descriptors)
}

// Lookup returns the descriptor bound to module#name.
func (t *Table) Lookup(module, name string) (*Descriptor, bool) {
	i, ok := t.index[module+"#"+name]
	if !ok {
		return nil, false
	}
	return &t.descriptors[i], true
}

// Descriptors returns the bound functions in declaration order.
func (t *Table) Descriptors() []Descriptor {
	return append([]Descriptor(nil), t.descriptors...)
}

// Namespaces returns the import namespaces in first-seen order.
func (t *Table) Namespaces() []string {
	return append([]string(nil), t.namespaces...)
}

// Namespace returns the descriptors of one import namespace.
func (t *Table) Namespace(module string) []Descriptor {
	var out []Descriptor
	for _, d := range t.descriptors {
		if d.Module == module {
			out = append(out, d)
		}
	}
	return out
}

// Widest returns the largest cumulative record width staged by a single call.
func (t *Table) Widest() uint32 {
	var w uint32
	for i := range t.descriptors {
		w = max(w, t.descriptors[i].Width())
	}
	return w
}

// RequiredWidths returns every width a ring region serving t must hold: each
// record kind and the widest single call.
func (t *Table) RequiredWidths() []uint32 {
	widths := make([]uint32, 0, len(record.Kinds())+1)
	for _, k := range record.Kinds() {
		widths = append(widths, k.Width())
	}
	return append(widths, t.Widest())
}
