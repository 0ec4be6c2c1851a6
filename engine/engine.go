package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/watim-playground/errors"
	"github.com/wippyai/watim-playground/wasi/unstable"
)

// Config holds configuration for engine creation
type Config struct {
	// ModuleNames are the host module names the WASI functions are exported
	// under. Empty means DefaultModuleNames.
	ModuleNames []string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// CloseOnContextDone aborts a running guest when its context is done.
	// Without it a guest that never returns runs forever.
	CloseOnContextDone bool
}

// DefaultModuleNames are used when Config.ModuleNames is empty
var DefaultModuleNames = []string{unstable.ModuleName, unstable.PreviewModuleName}

func (c *Config) moduleNames() []string {
	if c == nil || len(c.ModuleNames) == 0 {
		return DefaultModuleNames
	}
	return c.ModuleNames
}

// Engine wraps a wazero runtime with the playground host functions
type Engine struct {
	runtime     wazero.Runtime
	moduleNames []string
	modules     map[string]*Module
	compiles    singleflight.Group
	modulesMu   sync.RWMutex
	hostInitMu  sync.Mutex
	hostInitted atomic.Bool
}

// Module is a compiled guest binary
type Module struct {
	compiled wazero.CompiledModule
	digest   string
}

// Digest returns the hex SHA-256 of the binary the module was compiled from
func (m *Module) Digest() string {
	return m.digest
}

// Compiled returns the underlying wazero module
func (m *Module) Compiled() wazero.CompiledModule {
	return m.compiled
}

// New creates an engine with default configuration
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates an engine with custom configuration
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	names := cfg.moduleNames()
	for i, name := range names {
		if name == "" {
			return nil, errors.InvalidInput(errors.PhaseHost, "empty host module name")
		}
		for _, prev := range names[:i] {
			if prev == name {
				return nil, errors.New(errors.PhaseHost, errors.KindInvalidInput).
					Detail("duplicate host module name %q", name).
					Build()
			}
		}
	}

	return &Engine{
		runtime:     wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		moduleNames: append([]string(nil), names...),
		modules:     make(map[string]*Module),
	}, nil
}

// Runtime returns the underlying wazero runtime
func (e *Engine) Runtime() wazero.Runtime {
	return e.runtime
}

// ModuleNames returns the host module names the WASI functions live under
func (e *Engine) ModuleNames() []string {
	return append([]string(nil), e.moduleNames...)
}

// Close releases the runtime and every module compiled by it
func (e *Engine) Close(ctx context.Context) error {
	e.modulesMu.Lock()
	e.modules = make(map[string]*Module)
	e.modulesMu.Unlock()
	return e.runtime.Close(ctx)
}

// InitHost instantiates the host modules for this engine's runtime.
// Safe for concurrent calls from multiple runs sharing the same engine.
func (e *Engine) InitHost(ctx context.Context) error {
	if e.hostInitted.Load() {
		return nil
	}

	e.hostInitMu.Lock()
	defer e.hostInitMu.Unlock()

	if e.hostInitted.Load() {
		return nil
	}

	for _, name := range e.moduleNames {
		if e.runtime.Module(name) != nil {
			continue
		}
		if _, err := unstable.Instantiate(ctx, e.runtime, name); err != nil {
			return err
		}
		Logger().Debug("host module registered", zap.String("module", name))
	}

	e.hostInitted.Store(true)
	return nil
}

// Compile compiles binary, reusing an earlier compilation of the same bytes
func (e *Engine) Compile(ctx context.Context, binary []byte) (*Module, error) {
	sum := sha256.Sum256(binary)
	digest := hex.EncodeToString(sum[:])

	if m := e.cached(digest); m != nil {
		Logger().Debug("compiled module cache hit", zap.String("digest", digest[:12]))
		return m, nil
	}

	v, err, _ := e.compiles.Do(digest, func() (any, error) {
		if m := e.cached(digest); m != nil {
			return m, nil
		}
		compiled, err := e.runtime.CompileModule(ctx, binary)
		if err != nil {
			return nil, errors.Compile(err)
		}
		m := &Module{compiled: compiled, digest: digest}

		e.modulesMu.Lock()
		e.modules[digest] = m
		e.modulesMu.Unlock()

		Logger().Debug("compiled module",
			zap.String("digest", digest[:12]),
			zap.Int("bytes", len(binary)))
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Module), nil
}

func (e *Engine) cached(digest string) *Module {
	e.modulesMu.RLock()
	defer e.modulesMu.RUnlock()
	return e.modules[digest]
}

// Cached returns the number of compiled modules held by the cache
func (e *Engine) Cached() int {
	e.modulesMu.RLock()
	defer e.modulesMu.RUnlock()
	return len(e.modules)
}

// Evict drops the compiled module and releases its resources
func (e *Engine) Evict(ctx context.Context, m *Module) error {
	e.modulesMu.Lock()
	if e.modules[m.digest] == m {
		delete(e.modules, m.digest)
	}
	e.modulesMu.Unlock()
	return m.compiled.Close(ctx)
}

// CheckImports reports every import of m the host surface does not satisfy.
// The result is a *errors.MissingImportsError listing them, or nil.
func (e *Engine) CheckImports(m *Module) error {
	var missing []string

	for _, def := range m.compiled.ImportedFunctions() {
		moduleName, name, _ := def.Import()
		if !e.provides(moduleName, name) {
			missing = append(missing, moduleName+"#"+name)
		}
	}
	// Memories cannot come from the host; the guest must define its own.
	for _, def := range m.compiled.ImportedMemories() {
		moduleName, name, _ := def.Import()
		missing = append(missing, moduleName+"#"+name)
	}

	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.NewMissingImportsError(missing)
}

func (e *Engine) provides(moduleName, name string) bool {
	for _, n := range e.moduleNames {
		if n == moduleName {
			return unstable.Provides(name)
		}
	}
	return false
}

// Instantiate creates an anonymous instance of m. Start functions are not
// run; the caller invokes the entry point itself.
func (e *Engine) Instantiate(ctx context.Context, m *Module) (api.Module, error) {
	if err := e.InitHost(ctx); err != nil {
		return nil, err
	}

	modConfig := wazero.NewModuleConfig().
		WithName(""). // anonymous for parallel instantiation
		WithStartFunctions()

	instance, err := e.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return instance, nil
}
