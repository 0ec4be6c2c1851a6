// Package playground turns watim source into program output.
//
// A compile request runs the watim compiler, itself a wasi_unstable binary,
// over a tree holding the standard library and the source under edit. The
// compiler prints WAT on stdout and diagnostics on stderr. The WAT is
// assembled into a binary which then runs with an empty tree. Diagnostics
// and program output share one sink, so a caller sees the whole exchange as
// a single transcript.
package playground
