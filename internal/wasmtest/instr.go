package wasmtest

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"
)

const (
	opEnd      = 0x0b
	opCall     = 0x10
	opDrop     = 0x1a
	opLocalGet = 0x20
	opI32Load  = 0x28
	opI32Load8 = 0x2d
	opI32Store = 0x36
	opI32Str8  = 0x3a
	opI32Const = 0x41
	opI64Const = 0x42
	opF32Const = 0x43
	opF64Const = 0x44
	opI32Ne    = 0x47
	opI32LtU   = 0x49
	opI32Add   = 0x6a
)

func op(code byte, immediates ...uint32) []byte {
	var b bytes.Buffer
	b.WriteByte(code)
	for _, imm := range immediates {
		writeU32(&b, imm)
	}
	return b.Bytes()
}

// LocalGet pushes local i.
func LocalGet(i uint32) []byte { return op(opLocalGet, i) }

// I32Const pushes v.
func I32Const(v int32) []byte {
	var b bytes.Buffer
	b.WriteByte(opI32Const)
	writeS64(&b, int64(v))
	return b.Bytes()
}

// F64Const pushes v.
func F64Const(v float64) []byte {
	return append([]byte{opF64Const}, f64Bytes(v)...)
}

// I32Load loads an i32 from address+offset.
func I32Load(offset uint32) []byte { return op(opI32Load, 0, offset) }

// I32Load8U loads a zero-extended byte from address+offset.
func I32Load8U(offset uint32) []byte { return op(opI32Load8, 0, offset) }

// I32Store stores an i32 at address+offset.
func I32Store(offset uint32) []byte { return op(opI32Store, 0, offset) }

// I32Store8 stores the low byte of an i32 at address+offset.
func I32Store8(offset uint32) []byte { return op(opI32Str8, 0, offset) }

// Call calls function idx.
func Call(idx uint32) []byte { return op(opCall, idx) }

// Drop discards the top of the stack.
func Drop() []byte { return []byte{opDrop} }

// I32Add adds the two i32 values on top of the stack.
func I32Add() []byte { return []byte{opI32Add} }

// I32Ne compares the two i32 values on top of the stack for inequality.
func I32Ne() []byte { return []byte{opI32Ne} }

// I32LtU compares the two i32 values on top of the stack as unsigned.
func I32LtU() []byte { return []byte{opI32LtU} }

// StoreConst stores the i32 v at addr.
func StoreConst(addr uint32, v int32) []byte {
	return bytes.Join([][]byte{I32Const(int32(addr)), I32Const(v), I32Store(0)}, nil)
}

// Zero pushes the zero value of t.
func Zero(t api.ValueType) []byte {
	switch t {
	case api.ValueTypeI64:
		return []byte{opI64Const, 0x00}
	case api.ValueTypeF32:
		return []byte{opF32Const, 0, 0, 0, 0}
	case api.ValueTypeF64:
		return F64Const(0)
	default:
		return I32Const(0)
	}
}
