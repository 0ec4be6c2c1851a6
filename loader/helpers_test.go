package loader

import "github.com/wippyai/watim-playground/vfs"

func treeFile(fn Func) *vfs.Node[Func] {
	return vfs.File(fn)
}
