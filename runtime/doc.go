// Package runtime runs wasi_unstable command binaries against a virtual
// file tree and streams what they print.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	tree, _ := loader.Strings(map[string]string{"main.watim": source})
//	res, err := rt.Run(ctx, wasmBytes, []string{"watim", "main.watim"}, tree,
//	    output.Writers(os.Stdout, os.Stderr))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("exit code", res.ExitCode)
//
// # Run Lifecycle
//
//  1. Every loader in the tree is invoked, concurrently. Any failure ends the
//     run before the guest exists and the sink sees nothing.
//  2. The binary is compiled (cached per content) and its imports are
//     checked against the host functions.
//  3. A fresh instance gets its own descriptor table and arguments.
//  4. _start is called. Returning normally means exit code 0; proc_exit
//     supplies its own code. A binary without a memory or _start export does
//     not run at all, which Result.Ran reports.
//
// Output reaches the sink while the guest runs and is never withdrawn, even
// when the run later fails.
//
// # Concurrency
//
// A Runtime is safe for concurrent use. Each Run owns its descriptor table;
// the host module and compiled binaries are shared.
package runtime
