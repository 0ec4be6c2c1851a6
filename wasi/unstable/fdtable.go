package unstable

import (
	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/vfs"
)

// Reserved descriptors
const (
	FDStdin  uint32 = 0
	FDStdout uint32 = 1
	FDStderr uint32 = 2
	FDRoot   uint32 = 3
)

// DefaultPreopenName is the name reported for the root preopen
const DefaultPreopenName = "."

// FDTable maps descriptors to open files for one run. Descriptors are handed
// out in increasing order and never reused. It is not safe for concurrent
// use; the guest calls into it from a single goroutine.
type FDTable struct {
	files map[uint32]File
	root  *vfs.Node[[]byte]
	next  uint32
}

// NewFDTable installs stdin, stdout, stderr and the root preopen
func NewFDTable(sink output.Sink, root *vfs.Node[[]byte], preopenName string) *FDTable {
	if sink == nil {
		sink = output.Discard
	}
	if root == nil {
		root = vfs.Dir[[]byte](nil)
	}
	if preopenName == "" {
		preopenName = DefaultPreopenName
	}

	t := &FDTable{
		files: make(map[uint32]File, 8),
		root:  root,
	}
	t.add(unsupportedFile{})
	t.add(&sinkFile{sink: sink, fd: FDStdout})
	t.add(&sinkFile{sink: sink, fd: FDStderr})
	t.add(&preopenDir{name: preopenName})
	return t
}

func (t *FDTable) add(f File) uint32 {
	fd := t.next
	t.files[fd] = f
	t.next++
	return fd
}

// Get returns the file behind fd
func (t *FDTable) Get(fd uint32) (File, bool) {
	f, ok := t.files[fd]
	return f, ok
}

// Len returns the number of open descriptors
func (t *FDTable) Len() int {
	return len(t.files)
}

// Root returns the tree that Open resolves against
func (t *FDTable) Root() *vfs.Node[[]byte] {
	return t.root
}
