package runtime

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bytecodealliance/wasmtime-go/v11"
)

func mustWat(t *testing.T, src string) []byte {
	t.Helper()
	bin, err := wasmtime.Wat2Wasm(src)
	if err != nil {
		t.Fatalf("Wat2Wasm: %v", err)
	}
	return bin
}

const wasiImports = `
  (import "wasi_unstable" "args_sizes_get" (func $args_sizes_get (param i32 i32) (result i32)))
  (import "wasi_unstable" "args_get" (func $args_get (param i32 i32) (result i32)))
  (import "wasi_unstable" "fd_prestat_get" (func $fd_prestat_get (param i32 i32) (result i32)))
  (import "wasi_unstable" "fd_prestat_dir_name" (func $fd_prestat_dir_name (param i32 i32 i32) (result i32)))
  (import "wasi_unstable" "path_open" (func $path_open (param i32 i32 i32 i32 i32 i64 i64 i32 i32) (result i32)))
  (import "wasi_unstable" "fd_read" (func $fd_read (param i32 i32 i32 i32) (result i32)))
  (import "wasi_unstable" "fd_write" (func $fd_write (param i32 i32 i32 i32) (result i32)))
  (import "wasi_unstable" "proc_exit" (func $proc_exit (param i32)))
  (memory (export "memory") 1)

  ;; write len bytes at ptr to fd, iovec scratch at 0
  (func $write (param $fd i32) (param $ptr i32) (param $len i32)
    (i32.store (i32.const 0) (local.get $ptr))
    (i32.store (i32.const 4) (local.get $len))
    (drop (call $fd_write (local.get $fd) (i32.const 0) (i32.const 1) (i32.const 8))))

  ;; exit with errno when it is non-zero
  (func $check (param $errno i32)
    (if (local.get $errno) (then (call $proc_exit (local.get $errno)))))
`

// guest wraps a _start body with the WASI imports and helpers above.
// Memory layout: 0-63 scratch, 256 data, 1024 read buffer.
func guest(data, body string) string {
	return fmt.Sprintf(`(module %s
  (data (i32.const 256) "%s")
  (func (export "_start") (local $fd i32)
%s))`, wasiImports, watString(data), body)
}

// watString escapes every byte of s for a WAT string literal
func watString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		fmt.Fprintf(&b, "\\%02x", s[i])
	}
	return b.String()
}

// catGuest opens path relative to the root preopen and copies its content to
// stdout, times times. A failing call exits with its errno.
func catGuest(path string, times int) string {
	one := fmt.Sprintf(`
    (call $check (call $path_open (i32.const 3) (i32.const 0) (i32.const 256) (i32.const %d)
      (i32.const 0) (i64.const 0) (i64.const 0) (i32.const 0) (i32.const 16)))
    (local.set $fd (i32.load (i32.const 16)))
    (i32.store (i32.const 32) (i32.const 1024))
    (i32.store (i32.const 36) (i32.const 4096))
    (call $check (call $fd_read (local.get $fd) (i32.const 32) (i32.const 1) (i32.const 40)))
    (call $write (i32.const 1) (i32.const 1024) (i32.load (i32.const 40)))`, len(path))
	return guest(path, strings.Repeat(one, times))
}

// helloGuest prints greeting to stdout and returns normally
func helloGuest(greeting string) string {
	return guest(greeting, fmt.Sprintf(`
    (call $write (i32.const 1) (i32.const 256) (i32.const %d))`, len(greeting)))
}

// exitGuest prints "before", exits with code, then tries to print "after"
const exitGuestBody = `
    (call $write (i32.const 1) (i32.const 256) (i32.const 6))
    (call $proc_exit (i32.const %d))
    (call $write (i32.const 1) (i32.const 262) (i32.const 5))`

func exitGuest(code int) string {
	return guest("beforeafter", fmt.Sprintf(exitGuestBody, code))
}

// argsGuest prints the raw argument buffer to stdout
const argsGuest = `(module ` + wasiImports + `
  (func (export "_start")
    (call $check (call $args_sizes_get (i32.const 16) (i32.const 20)))
    (call $check (call $args_get (i32.const 2048) (i32.const 1024)))
    (call $write (i32.const 1) (i32.const 1024) (i32.load (i32.const 20)))))`

// prestatGuest prints the root preopen name, then exits with the errno
// fd_prestat_get returns for descriptor 4
const prestatGuest = `(module ` + wasiImports + `
  (func (export "_start")
    (call $check (call $fd_prestat_get (i32.const 3) (i32.const 16)))
    (call $check (call $fd_prestat_dir_name (i32.const 3) (i32.const 1024) (i32.load (i32.const 20))))
    (call $write (i32.const 1) (i32.const 1024) (i32.load (i32.const 20)))
    (call $proc_exit (call $fd_prestat_get (i32.const 4) (i32.const 16)))))`

// badFDGuest writes to stderr, then to a descriptor that was never opened
const badFDGuest = `(module ` + wasiImports + `
  (data (i32.const 256) "oops")
  (func (export "_start")
    (call $write (i32.const 2) (i32.const 256) (i32.const 4))
    (call $write (i32.const 9) (i32.const 256) (i32.const 4))
    (call $proc_exit (i32.const 0))))`

const trapGuest = `(module ` + wasiImports + `
  (data (i32.const 256) "partial")
  (func (export "_start")
    (call $write (i32.const 1) (i32.const 256) (i32.const 7))
    unreachable))`

const loopGuest = `(module
  (memory (export "memory") 1)
  (func (export "_start") (loop $l (br $l))))`

const noStartGuest = `(module (memory (export "memory") 1))`

const noMemoryGuest = `(module (func (export "_start")))`

const clockGuest = `(module
  (import "wasi_unstable" "clock_time_get" (func (param i32 i64 i32) (result i32)))
  (memory (export "memory") 1)
  (func (export "_start")))`
