// Package loader resolves file content for virtual file trees.
//
// A Func fetches the text of one file given its path in the tree. Trees of
// Funcs are resolved into loaded bytes with Resolve before a run starts, since
// host calls made by the guest cannot wait on I/O.
package loader

import (
	"context"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/errors"
	"github.com/wippyai/watim-playground/vfs"
)

// Func loads the content of the file at path
type Func func(ctx context.Context, path string) (string, error)

// Tree is an unresolved virtual file tree
type Tree = *vfs.Node[Func]

// Static returns a Func that always yields text
func Static(text string) Func {
	return func(context.Context, string) (string, error) {
		return text, nil
	}
}

// Strings builds a tree of static files from slash separated paths.
// A path that is used both as a file and as a directory is rejected.
func Strings(files map[string]string) (Tree, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	root := &dirBuilder{}
	for _, p := range paths {
		segs := vfs.Split(p)
		if len(segs) == 0 {
			return nil, errors.InvalidInput(errors.PhaseSetup, "empty file path")
		}
		if err := root.add(segs, Static(files[p])); err != nil {
			return nil, err
		}
	}
	return root.build(), nil
}

// Paths builds a tree in which every listed path is served by fn. It pairs
// with HTTP to mirror a remote directory whose file list is known up front.
func Paths(paths []string, fn Func) (Tree, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	root := &dirBuilder{}
	for _, p := range sorted {
		segs := vfs.Split(p)
		if len(segs) == 0 {
			return nil, errors.InvalidInput(errors.PhaseSetup, "empty file path")
		}
		if err := root.add(segs, fn); err != nil {
			return nil, err
		}
	}
	return root.build(), nil
}

type dirBuilder struct {
	files map[string]Func
	dirs  map[string]*dirBuilder
}

func (d *dirBuilder) add(segs []string, fn Func) error {
	name := segs[0]
	if len(segs) == 1 {
		if _, ok := d.dirs[name]; ok {
			return errors.InvalidData(errors.PhaseSetup, segs, "file shadows a directory")
		}
		if d.files == nil {
			d.files = make(map[string]Func)
		}
		d.files[name] = fn
		return nil
	}
	if _, ok := d.files[name]; ok {
		return errors.InvalidData(errors.PhaseSetup, segs, "directory shadows a file")
	}
	if d.dirs == nil {
		d.dirs = make(map[string]*dirBuilder)
	}
	sub, ok := d.dirs[name]
	if !ok {
		sub = &dirBuilder{}
		d.dirs[name] = sub
	}
	return sub.add(segs[1:], fn)
}

func (d *dirBuilder) build() Tree {
	children := make(map[string]*vfs.Node[Func], len(d.files)+len(d.dirs))
	for name, fn := range d.files {
		children[name] = vfs.File(fn)
	}
	for name, sub := range d.dirs {
		children[name] = sub.build()
	}
	return vfs.Dir(children)
}

// FS returns a Func reading paths from fsys
func FS(fsys fs.FS) Func {
	return func(_ context.Context, path string) (string, error) {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// FromFS mirrors the directory root of fsys as a tree whose files read from
// fsys on demand. Hidden entries (leading dot) are skipped.
func FromFS(fsys fs.FS, root string) (Tree, error) {
	if root == "" {
		root = "."
	}
	sub, err := fs.Sub(fsys, root)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSetup, errors.KindInvalidInput, err, "open tree root")
	}
	read := FS(sub)

	files := make(map[string]Func)
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files[p] = read
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSetup, errors.KindLoad, err, "walk tree root")
	}

	b := &dirBuilder{}
	for p, fn := range files {
		if err := b.add(vfs.Split(p), fn); err != nil {
			return nil, err
		}
	}
	return b.build(), nil
}

// Resolve invokes every loader of tree exactly once, concurrently, and
// returns the loaded tree. A single failing loader fails the whole
// resolution.
func Resolve(ctx context.Context, tree Tree) (*vfs.Node[[]byte], error) {
	return vfs.Resolve(ctx, tree, func(ctx context.Context, path string, fn Func) ([]byte, error) {
		text, err := fn(ctx, path)
		if err != nil {
			Logger().Debug("load failed", zap.String("path", path), zap.Error(err))
			return nil, errors.Load(path, err)
		}
		return []byte(text), nil
	})
}
