package unstable

import (
	"context"

	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/vfs"
)

// Config describes one run
type Config struct {
	// Root is the loaded tree served through the root preopen.
	Root *vfs.Node[[]byte]
	// Sink receives text written to stdout and stderr.
	Sink output.Sink
	// OnExit is called with the code passed to proc_exit.
	OnExit func(code uint32)
	// PreopenName is reported for the root preopen, "." by default.
	PreopenName string
	// Args is the argument vector, program name first.
	Args []string
}

// Session is the per-run state behind the host functions
type Session struct {
	files    *FDTable
	onExit   func(uint32)
	args     [][]byte
	argsSize uint32
	exitCode uint32
	exited   bool
}

// NewSession builds the descriptor table and encodes the arguments
func NewSession(cfg Config) *Session {
	s := &Session{
		files:  NewFDTable(cfg.Sink, cfg.Root, cfg.PreopenName),
		onExit: cfg.OnExit,
		args:   make([][]byte, len(cfg.Args)),
	}
	for i, a := range cfg.Args {
		s.args[i] = []byte(a)
		s.argsSize += uint32(len(a)) + 1
	}
	return s
}

// Files returns the session's descriptor table
func (s *Session) Files() *FDTable {
	return s.files
}

// Exit records the exit code and notifies the OnExit callback. It does not
// unwind the guest; the host function does that.
func (s *Session) Exit(code uint32) {
	s.exitCode = code
	s.exited = true
	if s.onExit != nil {
		s.onExit(code)
	}
}

// Exited reports the code passed to proc_exit, if it was called
func (s *Session) Exited() (uint32, bool) {
	return s.exitCode, s.exited
}

type sessionKey struct{}

// WithSession attaches s to ctx for the host functions to find
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session attached with WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
