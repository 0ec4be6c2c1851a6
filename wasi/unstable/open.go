package unstable

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/vfs"
)

// Open resolves path against the root tree and registers a new read-only
// descriptor for the file it names. A missing segment, or one that continues
// past a file, yields ErrnoNoent; a path that ends on a directory yields
// ErrnoIsdir. A trailing slash names a directory, so it yields ErrnoNoent
// when the path ends on a file.
func (t *FDTable) Open(path string) (uint32, Errno) {
	node, errno := lookup(t.root, vfs.Split(path))
	if errno == ErrnoSuccess && strings.HasSuffix(path, "/") {
		errno = ErrnoNoent
	}
	if errno != ErrnoSuccess {
		Logger().Debug("open failed", zap.String("path", path), zap.Stringer("errno", errno))
		return 0, errno
	}
	fd := t.add(newReadOnlyFile(node.Value()))
	Logger().Debug("opened", zap.String("path", path), zap.Uint32("fd", fd), zap.Int("bytes", len(node.Value())))
	return fd, ErrnoSuccess
}

func lookup(n *vfs.Node[[]byte], segs []string) (*vfs.Node[[]byte], Errno) {
	if len(segs) == 0 {
		if n.IsDir() {
			return nil, ErrnoIsdir
		}
		return n, ErrnoSuccess
	}
	child, ok := n.Child(segs[0])
	if !ok {
		return nil, ErrnoNoent
	}
	return lookup(child, segs[1:])
}
