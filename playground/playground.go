package playground

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/errors"
	"github.com/wippyai/watim-playground/loader"
	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/runtime"
	"github.com/wippyai/watim-playground/vfs"
)

// Defaults for Config fields left empty
const (
	DefaultCompilerName = "watim"
	DefaultMainFile     = "main.watim"
	DefaultProgramName  = "main"
)

// Stage is the last pipeline step a compile request reached
type Stage int

const (
	StageCompile Stage = iota
	StageRun
)

func (s Stage) String() string {
	switch s {
	case StageCompile:
		return "compile"
	case StageRun:
		return "run"
	default:
		return "unknown"
	}
}

// Config holds configuration for a playground
type Config struct {
	// Library is the tree the source file is added to, typically the
	// standard library. It may be nil.
	Library loader.Tree
	// Assembler defaults to Wasmtime.
	Assembler Assembler
	// CompilerName is argv[0] for the compiler.
	CompilerName string
	// MainFile is the top level name the source is served under.
	MainFile string
	// ProgramName is argv[0] for the compiled program.
	ProgramName string
	// Compiler is the watim compiler binary. Required.
	Compiler []byte
	// CompilerArgs go between argv[0] and the main file.
	CompilerArgs []string
}

// Outcome reports how far a compile request got
type Outcome struct {
	// WAT is the compiler's stdout, set once the compiler succeeded.
	WAT string
	// Result is the outcome of the last run, compiler or program.
	Result runtime.Result
	Stage  Stage
}

// Succeeded reports whether the program ran and exited with code 0
func (o Outcome) Succeeded() bool {
	return o.Stage == StageRun && o.Result.Ran && o.Result.ExitCode == 0
}

// Playground compiles and runs watim source on a shared runtime
type Playground struct {
	rt  *runtime.Runtime
	cfg Config
}

// New creates a playground running on rt
func New(rt *runtime.Runtime, cfg Config) (*Playground, error) {
	if len(cfg.Compiler) == 0 {
		return nil, errors.InvalidInput(errors.PhaseSetup, "no compiler binary")
	}
	if cfg.CompilerName == "" {
		cfg.CompilerName = DefaultCompilerName
	}
	if cfg.MainFile == "" {
		cfg.MainFile = DefaultMainFile
	}
	if segs := vfs.Split(cfg.MainFile); len(segs) != 1 {
		return nil, errors.New(errors.PhaseSetup, errors.KindInvalidInput).
			Detail("main file %q must be a top level name", cfg.MainFile).
			Build()
	}
	if cfg.ProgramName == "" {
		cfg.ProgramName = DefaultProgramName
	}
	if cfg.Assembler == nil {
		cfg.Assembler = Wasmtime
	}
	if cfg.Library == nil {
		cfg.Library = vfs.Dir[loader.Func](nil)
	}
	if !cfg.Library.IsDir() {
		return nil, errors.InvalidInput(errors.PhaseSetup, "library must be a directory")
	}
	return &Playground{rt: rt, cfg: cfg}, nil
}

// Compile runs the compiler over source and, if it succeeds, runs the
// result. Compiler diagnostics and program output both go to sink. A
// compiler that exits non-zero is reported through the Outcome, not as an
// error.
func (p *Playground) Compile(ctx context.Context, source string, sink output.Sink) (Outcome, error) {
	if sink == nil {
		sink = output.Discard
	}

	mainFile := vfs.Split(p.cfg.MainFile)[0]
	tree := p.cfg.Library.With(mainFile, vfs.File(loader.Static(source)))

	args := make([]string, 0, len(p.cfg.CompilerArgs)+2)
	args = append(args, p.cfg.CompilerName)
	args = append(args, p.cfg.CompilerArgs...)
	args = append(args, mainFile)

	var wat strings.Builder
	capture := output.Func(func(o output.Output) { wat.WriteString(o.Data) })

	began := time.Now()
	res, err := p.rt.Run(ctx, p.cfg.Compiler, args, tree, output.Route(capture, sink))
	out := Outcome{Stage: StageCompile, Result: res}
	if err != nil {
		return out, err
	}
	if !res.Ran || res.ExitCode != 0 {
		Logger().Debug("compile failed",
			zap.Bool("ran", res.Ran),
			zap.Uint32("exit_code", res.ExitCode),
			zap.Duration("elapsed", time.Since(began)))
		return out, nil
	}
	out.WAT = wat.String()
	Logger().Debug("compiled",
		zap.Int("wat_bytes", len(out.WAT)),
		zap.Duration("elapsed", time.Since(began)))

	bin, err := p.cfg.Assembler.Assemble(ctx, out.WAT)
	if err != nil {
		return out, errors.Assemble(err)
	}

	res, err = p.rt.Run(ctx, bin, []string{p.cfg.ProgramName}, nil, sink, runtime.WithEvict())
	out.Stage = StageRun
	out.Result = res
	if err != nil {
		return out, err
	}
	Logger().Debug("program finished",
		zap.Bool("ran", res.Ran),
		zap.Uint32("exit_code", res.ExitCode))
	return out, nil
}
