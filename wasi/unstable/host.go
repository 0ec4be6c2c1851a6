package unstable

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/errors"
)

// Host module names the functions are exported under
const (
	ModuleName        = "wasi_unstable"
	PreviewModuleName = "wasi_snapshot_preview1"
)

// Host function names
const (
	FunctionArgsGet          = "args_get"
	FunctionArgsSizesGet     = "args_sizes_get"
	FunctionFDPrestatGet     = "fd_prestat_get"
	FunctionFDPrestatDirName = "fd_prestat_dir_name"
	FunctionFDRead           = "fd_read"
	FunctionFDWrite          = "fd_write"
	FunctionPathOpen         = "path_open"
	FunctionProcExit         = "proc_exit"
)

// Functions lists every exported host function
var Functions = []string{
	FunctionArgsGet,
	FunctionArgsSizesGet,
	FunctionFDPrestatGet,
	FunctionFDPrestatDirName,
	FunctionFDRead,
	FunctionFDWrite,
	FunctionPathOpen,
	FunctionProcExit,
}

// Provides reports whether name is one of the exported host functions
func Provides(name string) bool {
	for _, fn := range Functions {
		if fn == name {
			return true
		}
	}
	return false
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Instantiate registers the host functions in r under moduleName
func Instantiate(ctx context.Context, r wazero.Runtime, moduleName string) (api.Module, error) {
	b := r.NewHostModuleBuilder(moduleName)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(argsGet), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		WithParameterNames("argv", "argv_buf").
		Export(FunctionArgsGet)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(argsSizesGet), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		WithParameterNames("result.argc", "result.argv_len").
		Export(FunctionArgsSizesGet)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(fdPrestatGet), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		WithParameterNames("fd", "result.prestat").
		Export(FunctionFDPrestatGet)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(fdPrestatDirName), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("fd", "path", "path_len").
		Export(FunctionFDPrestatDirName)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(fdRead), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("fd", "iovs", "iovs_len", "result.nread").
		Export(FunctionFDRead)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(fdWrite), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("fd", "iovs", "iovs_len", "result.nwritten").
		Export(FunctionFDWrite)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(pathOpen),
			[]api.ValueType{i32, i32, i32, i32, i32, i64, i64, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("fd", "dirflags", "path", "path_len", "oflags",
			"fs_rights_base", "fs_rights_inheriting", "fdflags", "result.opened_fd").
		Export(FunctionPathOpen)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(procExit), []api.ValueType{i32}, nil).
		WithParameterNames("rval").
		Export(FunctionProcExit)

	mod, err := b.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(moduleName, err)
	}
	return mod, nil
}

// session returns the run's session or aborts the guest. A missing session
// means the caller did not go through WithSession.
func session(ctx context.Context, fn string) *Session {
	s, ok := SessionFromContext(ctx)
	if !ok {
		err := errors.NotInitialized(errors.PhaseRuntime, "wasi session")
		err.Function = fn
		panic(err)
	}
	return s
}

// memory returns the caller's memory, fetched anew on every call
func memory(mod api.Module) (Memory, bool) {
	mem := mod.Memory()
	if mem == nil {
		return nil, false
	}
	return mem, true
}

func argsGet(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionArgsGet)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(s.ArgsGet(mem, api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func argsSizesGet(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionArgsSizesGet)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(s.ArgsSizesGet(mem, api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func fdPrestatGet(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionFDPrestatGet)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(s.FDPrestatGet(mem, api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func fdPrestatDirName(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionFDPrestatDirName)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(s.FDPrestatDirName(mem,
		api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])))
}

func fdRead(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionFDRead)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	errno, err := s.FDRead(mem,
		api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2]), api.DecodeU32(stack[3]))
	if err != nil {
		Logger().Error("fatal host call", zap.Error(err))
		panic(err)
	}
	stack[0] = uint64(errno)
}

func fdWrite(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionFDWrite)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	errno, err := s.FDWrite(mem,
		api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2]), api.DecodeU32(stack[3]))
	if err != nil {
		Logger().Error("fatal host call", zap.Error(err))
		panic(err)
	}
	stack[0] = uint64(errno)
}

func pathOpen(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionPathOpen)
	mem, ok := memory(mod)
	if !ok {
		stack[0] = uint64(ErrnoFault)
		return
	}
	// stack: fd, dirflags, path, path_len, oflags, rights_base, rights_inheriting, fdflags, result
	stack[0] = uint64(s.PathOpen(mem,
		api.DecodeU32(stack[0]), api.DecodeU32(stack[2]), api.DecodeU32(stack[3]), api.DecodeU32(stack[8])))
}

// procExit closes the module so later calls observe the exit code, then
// panics with sys.ExitError so no guest instruction runs after it.
func procExit(ctx context.Context, mod api.Module, stack []uint64) {
	s := session(ctx, FunctionProcExit)
	code := api.DecodeU32(stack[0])
	s.Exit(code)
	Logger().Debug("proc_exit", zap.Uint32("code", code))
	_ = mod.CloseWithExitCode(ctx, code)
	panic(sys.NewExitError(code))
}
