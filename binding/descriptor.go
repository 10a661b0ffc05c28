package binding

import (
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-bridge/errors"
	"github.com/wippyai/wasm-bridge/marshal"
	"github.com/wippyai/wasm-bridge/record"
)

// Spec is one parameter of a bound function: how it is marshalled and its wasm type.
type Spec struct {
	marshal.Param
	Type api.ValueType
}

// Scalar returns a pass-through parameter of type t.
func Scalar(t api.ValueType) Spec {
	return Spec{Param: marshal.Param{Class: marshal.Scalar}, Type: t}
}

// In returns a pointer to an input record of kind k.
func In(k record.Kind) Spec {
	return Spec{Param: marshal.Param{Class: marshal.In, Kind: k}, Type: api.ValueTypeI32}
}

// Out returns a pointer to an output record of kind k.
func Out(k record.Kind) Spec {
	return Spec{Param: marshal.Param{Class: marshal.Out, Kind: k}, Type: api.ValueTypeI32}
}

// Drop returns a parameter of type t that the target does not take.
func Drop(t api.ValueType) Spec {
	return Spec{Param: marshal.Param{Class: marshal.Discard}, Type: t}
}

// String returns the manifest spelling of s: "i32", "in:rect", "drop:i32", ...
func (s Spec) String() string {
	switch s.Class {
	case marshal.In, marshal.Out:
		return s.Param.String()
	case marshal.Discard:
		return "drop:" + api.ValueTypeName(s.Type)
	default:
		return api.ValueTypeName(s.Type)
	}
}

// ParseSpec parses the manifest spelling of a parameter.
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	class, rest, found := strings.Cut(text, ":")
	if !found {
		t, ok := parseValueType(text)
		if !ok {
			return Spec{}, errors.InvalidData(errors.PhaseManifest, nil, "unknown parameter type "+text)
		}
		return Scalar(t), nil
	}

	switch strings.ToLower(class) {
	case "in", "out":
		k, ok := record.ParseKind(rest)
		if !ok {
			return Spec{}, errors.InvalidData(errors.PhaseManifest, nil, "unknown record kind "+rest)
		}
		if strings.EqualFold(class, "in") {
			return In(k), nil
		}
		return Out(k), nil
	case "drop":
		t, ok := parseValueType(rest)
		if !ok {
			return Spec{}, errors.InvalidData(errors.PhaseManifest, nil, "unknown parameter type "+rest)
		}
		return Drop(t), nil
	}
	return Spec{}, errors.InvalidData(errors.PhaseManifest, nil, "unknown parameter class "+class)
}

func parseValueType(s string) (api.ValueType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i32":
		return api.ValueTypeI32, true
	case "i64":
		return api.ValueTypeI64, true
	case "f32":
		return api.ValueTypeF32, true
	case "f64":
		return api.ValueTypeF64, true
	}
	return 0, false
}

// Descriptor binds one guest import to one host module export.
type Descriptor struct {
	Module  string // import namespace, e.g. "system:SDL2"
	Name    string // import name, e.g. "SDL_PollEvent"
	Target  string // host module export, e.g. "_PollEvent"
	Params  []Spec
	Results []api.ValueType
}

// Key returns "module#name".
func (d *Descriptor) Key() string {
	return d.Module + "#" + d.Name
}

// Signature returns the marshalling view of d.
func (d *Descriptor) Signature() marshal.Signature {
	params := make([]marshal.Param, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Param
	}
	return marshal.Signature{Name: d.Name, Params: params}
}

// ParamTypes returns the wasm types of the import as seen by the guest.
func (d *Descriptor) ParamTypes() []api.ValueType {
	types := make([]api.ValueType, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return types
}

// TargetParamTypes returns the wasm types the host export is expected to take.
func (d *Descriptor) TargetParamTypes() []api.ValueType {
	types := make([]api.ValueType, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Class != marshal.Discard {
			types = append(types, p.Type)
		}
	}
	return types
}

// Width returns the cumulative record width staged by one call.
func (d *Descriptor) Width() uint32 {
	return d.Signature().Width()
}

func (d *Descriptor) validate() error {
	path := []string{d.Key()}
	if d.Module == "" || d.Name == "" {
		return errors.InvalidData(errors.PhaseManifest, path, "module and name are required")
	}
	if d.Target == "" {
		return errors.InvalidData(errors.PhaseManifest, path, "target export is required")
	}
	for i, p := range d.Params {
		switch p.Class {
		case marshal.In, marshal.Out:
			if !p.Kind.Valid() {
				return errors.New(errors.PhaseManifest, errors.KindInvalidData).
					Path(d.Key(), p.String()).
					Detail("parameter %d has no record kind", i).
					Build()
			}
			if p.Type != api.ValueTypeI32 {
				return errors.New(errors.PhaseManifest, errors.KindTypeMismatch).
					Path(d.Key(), p.String()).
					Detail("pointer parameter %d must be i32, got %s", i, api.ValueTypeName(p.Type)).
					Build()
			}
		case marshal.Scalar, marshal.Discard:
			if p.Kind != record.KindNone {
				return errors.New(errors.PhaseManifest, errors.KindInvalidData).
					Path(d.Key()).
					Detail("%s parameter %d cannot carry record kind %s", p.Class, i, p.Kind).
					Build()
			}
		default:
			return errors.New(errors.PhaseManifest, errors.KindInvalidData).
				Path(d.Key()).
				Detail("parameter %d has unknown class %d", i, uint8(p.Class)).
				Build()
		}
	}
	return nil
}
