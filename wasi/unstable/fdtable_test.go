package unstable

import (
	"testing"

	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/vfs"
)

func testTree() *vfs.Node[[]byte] {
	return vfs.Dir(map[string]*vfs.Node[[]byte]{
		"main.watim": vfs.File([]byte("fn main() {}")),
		"lib": vfs.Dir(map[string]*vfs.Node[[]byte]{
			"a":     vfs.File([]byte("AAA")),
			"empty": vfs.File([]byte{}),
		}),
	})
}

func TestFDTableReserved(t *testing.T) {
	tbl := NewFDTable(nil, nil, "")
	if tbl.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tbl.Len())
	}

	stdin, _ := tbl.Get(FDStdin)
	if _, errno := stdin.Read(make([]byte, 4)); errno != ErrnoNotsup {
		t.Errorf("stdin read errno = %v", errno)
	}

	root, _ := tbl.Get(FDRoot)
	name, ok := root.Preopen()
	if !ok || name != DefaultPreopenName {
		t.Errorf("root preopen = %q, %v", name, ok)
	}

	for _, fd := range []uint32{FDStdin, FDStdout, FDStderr} {
		f, _ := tbl.Get(fd)
		if _, ok := f.Preopen(); ok {
			t.Errorf("fd %d reported as preopen", fd)
		}
	}
	if _, ok := tbl.Get(4); ok {
		t.Error("fd 4 exists before any open")
	}
}

func TestFDTableOpen(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		errno Errno
		data  string
	}{
		{"top level", "main.watim", ErrnoSuccess, "fn main() {}"},
		{"nested", "lib/a", ErrnoSuccess, "AAA"},
		{"dot prefix", "./lib/a", ErrnoSuccess, "AAA"},
		{"redundant slashes", "lib//a", ErrnoSuccess, "AAA"},
		{"empty file", "lib/empty", ErrnoSuccess, ""},
		{"missing", "lib/b", ErrnoNoent, ""},
		{"past a file", "lib/a/x", ErrnoNoent, ""},
		{"trailing slash after a file", "lib/a/", ErrnoNoent, ""},
		{"trailing slash after a directory", "lib/", ErrnoIsdir, ""},
		{"parent segment", "lib/../main.watim", ErrnoNoent, ""},
		{"directory", "lib", ErrnoIsdir, ""},
		{"root", ".", ErrnoIsdir, ""},
		{"empty path", "", ErrnoIsdir, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewFDTable(output.Discard, testTree(), "")
			fd, errno := tbl.Open(tt.path)
			if errno != tt.errno {
				t.Fatalf("Open(%q) errno = %v, want %v", tt.path, errno, tt.errno)
			}
			if errno != ErrnoSuccess {
				if tbl.Len() != 4 {
					t.Errorf("failed open allocated a descriptor")
				}
				return
			}
			if fd != 4 {
				t.Errorf("fd = %d, want 4", fd)
			}
			f, _ := tbl.Get(fd)
			buf := make([]byte, 64)
			n, _ := f.Read(buf)
			if string(buf[:n]) != tt.data {
				t.Errorf("content = %q, want %q", buf[:n], tt.data)
			}
		})
	}
}

func TestFDTableMonotonic(t *testing.T) {
	tbl := NewFDTable(output.Discard, testTree(), "")

	var last uint32 = FDRoot
	for i := 0; i < 5; i++ {
		if _, errno := tbl.Open("missing"); errno != ErrnoNoent {
			t.Fatalf("errno = %v", errno)
		}
		fd, errno := tbl.Open("lib/a")
		if errno != ErrnoSuccess {
			t.Fatalf("errno = %v", errno)
		}
		if fd != last+1 {
			t.Fatalf("fd = %d, want %d", fd, last+1)
		}
		last = fd
	}
}

func TestReadOnlyFileIndependentPositions(t *testing.T) {
	tbl := NewFDTable(output.Discard, testTree(), "")
	a, _ := tbl.Open("lib/a")
	b, _ := tbl.Open("lib/a")
	fa, _ := tbl.Get(a)
	fb, _ := tbl.Get(b)

	buf := make([]byte, 2)
	if n, _ := fa.Read(buf); n != 2 || string(buf) != "AA" {
		t.Fatalf("first read = %q", buf[:n])
	}
	if n, _ := fa.Read(buf); n != 1 || string(buf[:n]) != "A" {
		t.Fatalf("second read = %q", buf[:n])
	}
	if n, _ := fa.Read(buf); n != 0 {
		t.Fatalf("read at end = %d", n)
	}
	if n, _ := fb.Read(buf); n != 2 || string(buf) != "AA" {
		t.Fatalf("other descriptor read = %q", buf[:n])
	}
}
