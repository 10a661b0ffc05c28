package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"

	bridgeerrors "github.com/wippyai/wasm-bridge/errors"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func instantiateMemory(t *testing.T) *Wrapper {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}

	mem := WrapMemory(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil wrapped memory")
	}
	return mem.(*Wrapper)
}

func TestWrapMemory_Nil(t *testing.T) {
	mem := WrapMemory(nil)
	if mem != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestWrapper_ReadWrite(t *testing.T) {
	mem := instantiateMemory(t)

	if mem.Size() != 65536 {
		t.Fatalf("Size = %d, want 65536", mem.Size())
	}

	data := []byte{1, 2, 3, 4}
	if err := mem.Write(100, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	read, err := mem.Read(100, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, b := range read {
		if b != data[i] {
			t.Errorf("byte %d: expected %d, got %d", i, data[i], b)
		}
	}
}

func TestWrapper_ReadOutOfBounds(t *testing.T) {
	mem := instantiateMemory(t)

	_, err := mem.Read(65536, 1) // exactly at boundary
	if err == nil {
		t.Fatal("expected error for out of bounds read")
	}
	if !errors.Is(err, &bridgeerrors.Error{Phase: bridgeerrors.PhaseRuntime, Kind: bridgeerrors.KindOutOfBounds}) {
		t.Errorf("unexpected error: %v", err)
	}

	// last byte is still readable
	if _, err := mem.Read(65535, 1); err != nil {
		t.Errorf("last byte: %v", err)
	}
}

func TestWrapper_WriteOutOfBounds(t *testing.T) {
	mem := instantiateMemory(t)

	err := mem.Write(65530, make([]byte, 16))
	if err == nil {
		t.Error("expected error for out of bounds write")
	}
}
