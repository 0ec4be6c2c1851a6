// Package vfs describes immutable virtual file trees.
//
// A tree is made of Node[T] values that are either a file holding a T or a
// directory holding named children. The same shape is used twice in a
// playground run: once with deferred loaders as the file value, and once with
// the loaded bytes after Resolve has fetched everything.
//
//	tree := vfs.Dir(map[string]*vfs.Node[string]{
//		"main": vfs.File("fn main() {}"),
//		"lib":  vfs.Dir(map[string]*vfs.Node[string]{"a": vfs.File("...")}),
//	})
//
// Paths are slash separated and relative to the root. Empty and "." segments
// are ignored, so "", "." and "./" all name the root. There is no ".."
// handling; it is an ordinary name.
package vfs
