package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in a playground run the error occurred
type Phase string

const (
	PhaseSetup    Phase = "setup"    // tree resolution before the guest starts
	PhaseLoad     Phase = "load"     // fetching file content
	PhaseCompile  Phase = "compile"  // wasm compilation and import checks
	PhaseRuntime  Phase = "runtime"  // guest execution
	PhaseHost     Phase = "host"     // host module registration
	PhaseAssemble Phase = "assemble" // WAT to binary
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData    Kind = "invalid_data"
	KindMissingImport  Kind = "missing_import"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindInstantiation  Kind = "instantiation"
	KindLoad           Kind = "load"
	KindBadDescriptor  Kind = "bad_descriptor"
	KindTrap           Kind = "trap"
)

// Error is the structured error type used throughout the playground
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Function string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Function != "" {
		b.WriteString(" in ")
		b.WriteString(e.Function)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the file path segments
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Function sets the host or guest function name
func (b *Builder) Function(name string) *Builder {
	b.err.Function = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// BadDescriptor reports a host call on a descriptor that was never opened.
// The guest and host have lost track of each other, so the run cannot go on.
func BadDescriptor(function string, fd uint32) *Error {
	return &Error{
		Phase:    PhaseRuntime,
		Kind:     KindBadDescriptor,
		Function: function,
		Detail:   fmt.Sprintf("descriptor %d is not open", fd),
		Value:    fd,
	}
}

// Load creates a file loading error for the given tree path
func Load(path string, cause error) *Error {
	var segments []string
	if path != "" {
		segments = strings.Split(path, "/")
	}
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Path:   segments,
		Detail: "load file content",
		Cause:  cause,
	}
}

// Setup creates an error for a run that never started
func Setup(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseSetup,
		Kind:   KindLoad,
		Detail: detail,
		Cause:  cause,
	}
}

// Trap wraps an abnormal guest termination
func Trap(function string, cause error) *Error {
	return &Error{
		Phase:    PhaseRuntime,
		Kind:     KindTrap,
		Function: function,
		Detail:   "guest terminated abnormally",
		Cause:    cause,
	}
}

// MissingImport represents a single unresolved import
type MissingImport struct {
	Namespace string // e.g., "wasi_unstable"
	Function  string // e.g., "clock_time_get"
}

// MissingImportsError is returned when a binary imports host functions the
// playground does not provide
type MissingImportsError struct {
	Imports []MissingImport
}

// NewMissingImportsError creates an error from a list of "namespace#function" strings
func NewMissingImportsError(imports []string) *MissingImportsError {
	result := &MissingImportsError{
		Imports: make([]MissingImport, 0, len(imports)),
	}
	for _, imp := range imports {
		ns, fn := parseImportKey(imp)
		result.Imports = append(result.Imports, MissingImport{
			Namespace: ns,
			Function:  fn,
		})
	}
	return result
}

func parseImportKey(key string) (namespace, function string) {
	ns, fn, found := strings.Cut(key, "#")
	if found {
		return ns, fn
	}
	return key, ""
}

func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "[compile] missing_import: no imports specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("missing %d host function(s):\n", len(e.Imports)))

	// Group by namespace for cleaner output
	byNS := make(map[string][]string)
	var nsOrder []string
	for _, imp := range e.Imports {
		if _, exists := byNS[imp.Namespace]; !exists {
			nsOrder = append(nsOrder, imp.Namespace)
		}
		byNS[imp.Namespace] = append(byNS[imp.Namespace], imp.Function)
	}

	for _, ns := range nsOrder {
		b.WriteString("\n  ")
		b.WriteString(ns)
		b.WriteString(":\n")
		for _, fn := range byNS[ns] {
			b.WriteString("    - ")
			b.WriteString(fn)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a host registration error
func Registration(namespace string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register host module %s", namespace),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Compile creates a wasm compilation error
func Compile(cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidData,
		Detail: "compile module",
		Cause:  cause,
	}
}

// Assemble creates a WAT assembly error
func Assemble(cause error) *Error {
	return &Error{
		Phase:  PhaseAssemble,
		Kind:   KindInvalidData,
		Detail: "assemble WAT",
		Cause:  cause,
	}
}
