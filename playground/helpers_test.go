package playground

import (
	"github.com/wippyai/watim-playground/loader"
	"github.com/wippyai/watim-playground/vfs"
)

func treeFile(text string) loader.Tree {
	return vfs.File(loader.Static(text))
}
