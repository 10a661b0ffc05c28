// Package wasmtest assembles small core wasm modules for tests.
//
// Only the sections the bridge tests need are supported: types, function imports,
// one exported memory, functions, exports and active data segments.
package wasmtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	exportFunc   = 0x00
	exportMemory = 0x02
)

type funcType struct {
	params, results []api.ValueType
}

type importFunc struct {
	module, name string
	typeIdx      uint32
}

type function struct {
	name    string
	locals  []api.ValueType
	body    []byte
	typeIdx uint32
}

type segment struct {
	data   []byte
	offset uint32
}

// Module is a module under construction.
type Module struct {
	types    []funcType
	imports  []importFunc
	funcs    []function
	data     []segment
	memPages uint32
}

// New returns an empty module.
func New() *Module {
	return &Module{}
}

// Memory adds one memory of pages 64KiB pages exported as "memory".
func (m *Module) Memory(pages uint32) *Module {
	m.memPages = pages
	return m
}

// Import adds a function import and returns its function index.
// Imports must be added before any function is defined.
func (m *Module) Import(module, name string, params, results []api.ValueType) uint32 {
	if len(m.funcs) > 0 {
		panic("wasmtest: imports must precede functions")
	}
	m.imports = append(m.imports, importFunc{module: module, name: name, typeIdx: m.typeIndex(params, results)})
	return uint32(len(m.imports) - 1)
}

// Func defines a function and returns its index. A non-empty name exports it.
// body is the instruction sequence without the trailing end.
func (m *Module) Func(name string, params, results, locals []api.ValueType, body ...[]byte) uint32 {
	m.funcs = append(m.funcs, function{
		name:    name,
		locals:  locals,
		body:    bytes.Join(body, nil),
		typeIdx: m.typeIndex(params, results),
	})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// Data places b at offset in memory when the module is instantiated.
func (m *Module) Data(offset uint32, b []byte) *Module {
	m.data = append(m.data, segment{offset: offset, data: b})
	return m
}

func (m *Module) typeIndex(params, results []api.ValueType) uint32 {
	for i, t := range m.types {
		if bytes.Equal(t.params, params) && bytes.Equal(t.results, results) {
			return uint32(i)
		}
	}
	m.types = append(m.types, funcType{params: params, results: results})
	return uint32(len(m.types) - 1)
}

// Bytes encodes the module in the wasm binary format.
func (m *Module) Bytes() []byte {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})

	if len(m.types) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(m.types)))
		for _, t := range m.types {
			sec.WriteByte(0x60)
			writeU32(&sec, uint32(len(t.params)))
			sec.Write(t.params)
			writeU32(&sec, uint32(len(t.results)))
			sec.Write(t.results)
		}
		writeSection(&out, sectionType, sec.Bytes())
	}

	if len(m.imports) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(m.imports)))
		for _, imp := range m.imports {
			writeName(&sec, imp.module)
			writeName(&sec, imp.name)
			sec.WriteByte(exportFunc)
			writeU32(&sec, imp.typeIdx)
		}
		writeSection(&out, sectionImport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(m.funcs)))
		for _, f := range m.funcs {
			writeU32(&sec, f.typeIdx)
		}
		writeSection(&out, sectionFunction, sec.Bytes())
	}

	if m.memPages > 0 {
		var sec bytes.Buffer
		writeU32(&sec, 1)
		sec.WriteByte(0x00) // no maximum
		writeU32(&sec, m.memPages)
		writeSection(&out, sectionMemory, sec.Bytes())
	}

	var exports bytes.Buffer
	var exportCount uint32
	if m.memPages > 0 {
		writeName(&exports, "memory")
		exports.WriteByte(exportMemory)
		writeU32(&exports, 0)
		exportCount++
	}
	for i, f := range m.funcs {
		if f.name == "" {
			continue
		}
		writeName(&exports, f.name)
		exports.WriteByte(exportFunc)
		writeU32(&exports, uint32(len(m.imports)+i))
		exportCount++
	}
	if exportCount > 0 {
		var sec bytes.Buffer
		writeU32(&sec, exportCount)
		sec.Write(exports.Bytes())
		writeSection(&out, sectionExport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(m.funcs)))
		for _, f := range m.funcs {
			var code bytes.Buffer
			writeU32(&code, uint32(len(f.locals)))
			for _, l := range f.locals {
				writeU32(&code, 1)
				code.WriteByte(l)
			}
			code.Write(f.body)
			code.WriteByte(opEnd)
			writeU32(&sec, uint32(code.Len()))
			sec.Write(code.Bytes())
		}
		writeSection(&out, sectionCode, sec.Bytes())
	}

	if len(m.data) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(m.data)))
		for _, d := range m.data {
			sec.WriteByte(0x00) // active, memory 0
			sec.Write(I32Const(int32(d.offset)))
			sec.WriteByte(opEnd)
			writeU32(&sec, uint32(len(d.data)))
			sec.Write(d.data)
		}
		writeSection(&out, sectionData, sec.Bytes())
	}

	return out.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, payload []byte) {
	w.WriteByte(id)
	writeU32(w, uint32(len(payload)))
	w.Write(payload)
}

func writeName(w *bytes.Buffer, s string) {
	writeU32(w, uint32(len(s)))
	w.WriteString(s)
}

func writeU32(w *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

func writeS64(w *bytes.Buffer, v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.WriteByte(b)
	}
}

func f64Bytes(v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return b[:]
}
