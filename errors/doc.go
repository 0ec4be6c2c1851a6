// Package errors provides structured error types for the playground.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the file path, the host function involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindLoad).
//		Path("lib", "a").
//		Detail("status %d", 404).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BadDescriptor("fd_read", 9)
//	err := errors.Load("lib/a", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind only, so a bare &Error{Phase: p, Kind: k}
// works as a target.
package errors
