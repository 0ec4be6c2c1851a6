package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/engine"
	"github.com/wippyai/watim-playground/loader"
	"github.com/wippyai/watim-playground/playground"
	"github.com/wippyai/watim-playground/runtime"
	"github.com/wippyai/watim-playground/wasi/unstable"
)

func setupLogging(opts *rootOptions) error {
	if !opts.verbose && opts.logFile == "" {
		return nil
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.logFile != "" {
		cfg.OutputPaths = []string{opts.logFile}
		cfg.ErrorOutputPaths = []string{opts.logFile}
	}
	log, err := cfg.Build()
	if err != nil {
		return err
	}

	engine.SetLogger(log.Named("engine"))
	loader.SetLogger(log.Named("loader"))
	unstable.SetLogger(log.Named("wasi"))
	runtime.SetLogger(log.Named("runtime"))
	playground.SetLogger(log.Named("playground"))
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readBinary loads a wasm binary from a local path or an http(s) URL
func readBinary(ctx context.Context, location string) ([]byte, error) {
	if isURL(location) {
		return loader.Fetch(ctx, location, &loader.HTTPConfig{ProgressInterval: time.Second})
	}
	return os.ReadFile(location)
}

// programName is the argv[0] a binary at location runs under
func programName(location string) string {
	base := filepath.Base(location)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// libraryOptions selects where a library tree comes from: a local directory,
// or a base URL with an explicit file list.
type libraryOptions struct {
	dir   string
	url   string
	files []string
}

func (o *libraryOptions) tree() (loader.Tree, error) {
	switch {
	case o.url != "":
		return loader.Paths(o.files, loader.HTTP(o.url, &loader.HTTPConfig{ProgressInterval: time.Second}))
	case o.dir != "":
		return loader.FromFS(os.DirFS(o.dir), ".")
	default:
		return nil, nil
	}
}

type pipelineOptions struct {
	library      libraryOptions
	compiler     string
	compilerArgs []string
	timeout      time.Duration
}

// newPlayground builds a runtime and a playground for compiling file. The
// library is served through the process-wide cache so repeated compiles do
// not reload it.
func newPlayground(ctx context.Context, opts *pipelineOptions, file string) (*runtime.Runtime, *playground.Playground, error) {
	compiler, err := readBinary(ctx, opts.compiler)
	if err != nil {
		return nil, nil, err
	}
	lib, err := opts.library.tree()
	if err != nil {
		return nil, nil, err
	}

	rt, err := runtime.New(ctx, &engine.Config{CloseOnContextDone: opts.timeout > 0})
	if err != nil {
		return nil, nil, err
	}
	pg, err := playground.New(rt, playground.Config{
		Compiler:     compiler,
		CompilerArgs: opts.compilerArgs,
		MainFile:     filepath.Base(file),
		ProgramName:  programName(file),
		Library:      loader.Default.WrapTree(lib),
	})
	if err != nil {
		rt.Close(ctx)
		return nil, nil, err
	}
	return rt, pg, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
