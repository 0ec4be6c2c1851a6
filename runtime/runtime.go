package runtime

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/engine"
	"github.com/wippyai/watim-playground/errors"
	"github.com/wippyai/watim-playground/loader"
	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/vfs"
	"github.com/wippyai/watim-playground/wasi/unstable"
)

// Entry point and memory exports a command binary must have
const (
	StartFunction = "_start"
	MemoryExport  = "memory"
)

// Result describes a finished run
type Result struct {
	// ExitCode is 0 when _start returned, else the proc_exit argument.
	ExitCode uint32
	// Ran is false when the binary lacked a memory or _start export.
	Ran bool
}

type Runtime struct {
	engine *engine.Engine
}

// New creates a runtime with its own engine. cfg may be nil.
func New(ctx context.Context, cfg *engine.Config) (*Runtime, error) {
	eng, err := engine.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Runtime{engine: eng}, nil
}

// NewWithEngine creates a runtime over an existing engine
func NewWithEngine(eng *engine.Engine) *Runtime {
	return &Runtime{engine: eng}
}

// Engine returns the engine runs execute on
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Close releases all runtime resources.
// Runs still in progress fail.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

// Run resolves tree and executes binary with args. Guest output goes to sink
// as it is written. A failed resolution returns a PhaseSetup error and the
// guest never starts.
func (r *Runtime) Run(ctx context.Context, binary []byte, args []string, tree loader.Tree, sink output.Sink, opts ...Option) (Result, error) {
	var root *vfs.Node[[]byte]
	if tree != nil {
		var err error
		root, err = loader.Resolve(ctx, tree)
		if err != nil {
			return Result{}, errors.Setup("resolve file tree", err)
		}
	}
	return r.RunLoaded(ctx, binary, args, root, sink, opts...)
}

// RunLoaded executes binary against an already loaded tree
func (r *Runtime) RunLoaded(ctx context.Context, binary []byte, args []string, root *vfs.Node[[]byte], sink output.Sink, opts ...Option) (Result, error) {
	o := buildOptions(opts)

	mod, err := r.engine.Compile(ctx, binary)
	if err != nil {
		return Result{}, err
	}
	if o.evictOnClose {
		defer func() {
			if err := r.engine.Evict(ctx, mod); err != nil {
				Logger().Warn("evict compiled module", zap.Error(err))
			}
		}()
	}
	if err := r.engine.CheckImports(mod); err != nil {
		return Result{}, err
	}

	session := unstable.NewSession(unstable.Config{
		Args:        args,
		Root:        root,
		Sink:        sink,
		OnExit:      o.onExit,
		PreopenName: o.preopenName,
	})
	ctx = unstable.WithSession(ctx, session)

	inst, err := r.engine.Instantiate(ctx, mod)
	if err != nil {
		return Result{}, err
	}
	defer inst.Close(ctx)

	start := inst.ExportedFunction(StartFunction)
	if inst.ExportedMemory(MemoryExport) == nil || start == nil {
		Logger().Warn("binary is not a command",
			zap.Bool("memory", inst.ExportedMemory(MemoryExport) != nil),
			zap.Bool("start", start != nil))
		return Result{}, nil
	}

	log := Logger().With(zap.String("module", mod.Digest()[:12]))
	log.Debug("run started", zap.Strings("args", args))
	began := time.Now()

	_, err = start.Call(ctx)
	if err == nil {
		log.Debug("run finished", zap.Uint32("exit_code", 0), zap.Duration("elapsed", time.Since(began)))
		return Result{Ran: true}, nil
	}

	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		if code, exited := session.Exited(); exited {
			log.Debug("run finished", zap.Uint32("exit_code", code), zap.Duration("elapsed", time.Since(began)))
			return Result{ExitCode: code, Ran: true}, nil
		}
	}

	log.Error("run failed", zap.Error(err))
	return Result{Ran: true}, errors.Trap(StartFunction, err)
}

// Run executes binary on a runtime created for this call alone
func Run(ctx context.Context, binary []byte, args []string, tree loader.Tree, sink output.Sink, opts ...Option) (Result, error) {
	r, err := New(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer r.Close(ctx)
	return r.Run(ctx, binary, args, tree, sink, opts...)
}
