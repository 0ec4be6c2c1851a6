package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/bytecodealliance/wasmtime-go/v11"

	"github.com/wippyai/watim-playground/errors"
	"github.com/wippyai/watim-playground/wasi/unstable"
)

func mustWat(t *testing.T, src string) []byte {
	t.Helper()
	bin, err := wasmtime.Wat2Wasm(src)
	if err != nil {
		t.Fatalf("Wat2Wasm: %v", err)
	}
	return bin
}

const minimalWat = `(module
  (memory (export "memory") 1)
  (func (export "_start")))`

const writerWat = `(module
  (import "wasi_unstable" "fd_write" (func (param i32 i32 i32 i32) (result i32)))
  (import "wasi_snapshot_preview1" "proc_exit" (func (param i32)))
  (memory (export "memory") 1)
  (func (export "_start")))`

func TestNewWithConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg  *Config
		name string
	}{
		{nil, "nil config"},
		{&Config{}, "default config"},
		{&Config{MemoryLimitPages: 256}, "16MB limit"},
		{&Config{CloseOnContextDone: true}, "close on context done"},
		{&Config{ModuleNames: []string{"wasi_unstable"}}, "single module name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng, err := NewWithConfig(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("NewWithConfig failed: %v", err)
			}
			defer eng.Close(ctx)

			if eng.Runtime() == nil {
				t.Error("engine runtime should not be nil")
			}
			if len(eng.ModuleNames()) == 0 {
				t.Error("engine has no host module names")
			}
		})
	}
}

func TestNewWithConfig_InvalidNames(t *testing.T) {
	ctx := context.Background()

	for _, names := range [][]string{{""}, {"wasi_unstable", "wasi_unstable"}} {
		_, err := NewWithConfig(ctx, &Config{ModuleNames: names})
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindInvalidInput}) {
			t.Errorf("names %q: err = %v", names, err)
		}
	}
}

func TestInitHost(t *testing.T) {
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- eng.InitHost(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("InitHost: %v", err)
		}
	}

	for _, name := range DefaultModuleNames {
		mod := eng.Runtime().Module(name)
		if mod == nil {
			t.Fatalf("host module %s not registered", name)
		}
		defs := mod.ExportedFunctionDefinitions()
		for _, fn := range unstable.Functions {
			if _, ok := defs[fn]; !ok {
				t.Errorf("%s does not export %s", name, fn)
			}
		}
	}
}

func TestCompile_Cache(t *testing.T) {
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	bin := mustWat(t, minimalWat)

	var wg sync.WaitGroup
	mods := make([]*Module, 4)
	for i := range mods {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := eng.Compile(ctx, bin)
			if err != nil {
				t.Errorf("Compile: %v", err)
				return
			}
			mods[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range mods[1:] {
		if m != mods[0] {
			t.Fatal("same binary compiled more than once")
		}
	}
	if eng.Cached() != 1 {
		t.Errorf("Cached = %d, want 1", eng.Cached())
	}
	if len(mods[0].Digest()) != 64 {
		t.Errorf("digest = %q", mods[0].Digest())
	}

	if err := eng.Evict(ctx, mods[0]); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if eng.Cached() != 0 {
		t.Errorf("Cached after evict = %d", eng.Cached())
	}
	again, err := eng.Compile(ctx, bin)
	if err != nil {
		t.Fatal(err)
	}
	if again == mods[0] {
		t.Error("evicted module returned from cache")
	}
}

func TestCompile_Invalid(t *testing.T) {
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	_, err = eng.Compile(ctx, []byte("not wasm"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindInvalidData}) {
		t.Errorf("err = %v", err)
	}
	if eng.Cached() != 0 {
		t.Error("failed compilation was cached")
	}
}

func TestCheckImports(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *Config
		wat     string
		missing []errors.MissingImport
	}{
		{
			name: "no imports",
			wat:  minimalWat,
		},
		{
			name: "provided under both names",
			wat:  writerWat,
		},
		{
			name: "preview1 disabled",
			cfg:  &Config{ModuleNames: []string{"wasi_unstable"}},
			wat:  writerWat,
			missing: []errors.MissingImport{
				{Namespace: "wasi_snapshot_preview1", Function: "proc_exit"},
			},
		},
		{
			name: "unknown functions",
			wat: `(module
  (import "wasi_unstable" "clock_time_get" (func (param i32 i64 i32) (result i32)))
  (import "env" "log" (func (param i32)))
  (memory (export "memory") 1)
  (func (export "_start")))`,
			missing: []errors.MissingImport{
				{Namespace: "env", Function: "log"},
				{Namespace: "wasi_unstable", Function: "clock_time_get"},
			},
		},
		{
			name: "imported memory",
			wat: `(module
  (import "env" "memory" (memory 1))
  (func (export "_start")))`,
			missing: []errors.MissingImport{
				{Namespace: "env", Function: "memory"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewWithConfig(ctx, tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer eng.Close(ctx)

			m, err := eng.Compile(ctx, mustWat(t, tt.wat))
			if err != nil {
				t.Fatal(err)
			}

			err = eng.CheckImports(m)
			if len(tt.missing) == 0 {
				if err != nil {
					t.Fatalf("CheckImports: %v", err)
				}
				return
			}

			var mie *errors.MissingImportsError
			if !stderrors.As(err, &mie) {
				t.Fatalf("expected MissingImportsError, got %v", err)
			}
			if len(mie.Imports) != len(tt.missing) {
				t.Fatalf("imports = %+v, want %+v", mie.Imports, tt.missing)
			}
			for i, want := range tt.missing {
				if mie.Imports[i] != want {
					t.Errorf("import %d = %+v, want %+v", i, mie.Imports[i], want)
				}
			}
		})
	}
}

func TestInstantiate_Anonymous(t *testing.T) {
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	m, err := eng.Compile(ctx, mustWat(t, writerWat))
	if err != nil {
		t.Fatal(err)
	}

	// Two live instances of one module must not collide on name.
	a, err := eng.Instantiate(ctx, m)
	if err != nil {
		t.Fatalf("first Instantiate: %v", err)
	}
	defer a.Close(ctx)
	b, err := eng.Instantiate(ctx, m)
	if err != nil {
		t.Fatalf("second Instantiate: %v", err)
	}
	defer b.Close(ctx)

	if a.ExportedFunction("_start") == nil || b.ExportedMemory("memory") == nil {
		t.Error("exports missing from instance")
	}
}

func TestInstantiate_StartNotRun(t *testing.T) {
	ctx := context.Background()
	eng, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	// wazero calls _start during instantiation unless told not to.
	m, err := eng.Compile(ctx, mustWat(t, `(module
  (memory (export "memory") 1)
  (func (export "_start") unreachable))`))
	if err != nil {
		t.Fatal(err)
	}
	inst, err := eng.Instantiate(ctx, m)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	if _, err := inst.ExportedFunction("_start").Call(ctx); err == nil {
		t.Error("expected trap from _start")
	}
}
