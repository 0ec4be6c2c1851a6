// Package engine owns the wazero runtime that playground guests run in.
//
// An Engine registers the wasi_unstable host functions once, under every
// configured host module name, and compiles guest binaries on demand.
// Compiled modules are cached by the SHA-256 of their bytes, so running the
// same compiler binary over and over only pays for compilation once.
//
//	eng, err := engine.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	mod, err := eng.Compile(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := eng.CheckImports(mod); err != nil {
//	    log.Fatal(err) // *errors.MissingImportsError
//	}
//	inst, err := eng.Instantiate(ctx, mod)
//
// # Thread Safety
//
// Engine and Module are safe for concurrent use. Instances are anonymous, so
// any number of runs may instantiate the same Module at once. Per-run host
// state travels in the context; see the unstable package.
//
// Most users should use the runtime package, which wraps the whole run.
package engine
