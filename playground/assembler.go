package playground

import (
	"context"

	"github.com/bytecodealliance/wasmtime-go/v11"
)

// Assembler turns WebAssembly text into a binary module
type Assembler interface {
	Assemble(ctx context.Context, wat string) ([]byte, error)
}

// AssemblerFunc adapts a function to Assembler
type AssemblerFunc func(ctx context.Context, wat string) ([]byte, error)

func (f AssemblerFunc) Assemble(ctx context.Context, wat string) ([]byte, error) {
	return f(ctx, wat)
}

// Wasmtime assembles with wasmtime's wat2wasm
var Wasmtime Assembler = AssemblerFunc(func(_ context.Context, wat string) ([]byte, error) {
	return wasmtime.Wat2Wasm(wat)
})
