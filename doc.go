// Package watimplayground hosts the watim playground: a wasi_unstable shim
// that runs the watim compiler and the programs it produces.
//
// # Architecture Overview
//
//	watimplayground/
//	├── runtime/         Run a command binary against a file tree
//	├── engine/          wazero runtime, compiled module cache, import checks
//	├── wasi/unstable/   The eight wasi_unstable host functions and descriptor table
//	├── loader/          File content loaders: static, io/fs, HTTP, memoizing cache
//	├── vfs/             Generic file tree and concurrent tree resolution
//	├── output/          Output events, transcripts and terminal rendering
//	├── playground/      Compile pipeline: source -> compiler -> WAT -> program
//	├── errors/          Structured error types
//	└── cmd/playground/  CLI with run, compile and an interactive editor
//
// # Quick Start
//
// Run a command binary with one file visible to it:
//
//	tree, _ := loader.Strings(map[string]string{"lib/a": "hello"})
//	res, err := runtime.Run(ctx, wasmBytes, []string{"cat", "lib/a"}, tree,
//	    output.Writers(os.Stdout, os.Stderr))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Exit(int(res.ExitCode))
//
// # Host Surface
//
// Guests see exactly these functions, under both wasi_unstable and
// wasi_snapshot_preview1:
//
//	args_sizes_get, args_get       argument vector
//	fd_prestat_get                 descriptor 3 is the only preopen
//	fd_prestat_dir_name
//	path_open                      read-only files from the tree
//	fd_read                        tree files
//	fd_write                       descriptors 1 and 2, forwarded to a sink
//	proc_exit                      ends the run with a code
//
// Anything else a binary imports is reported before it starts.
package watimplayground
