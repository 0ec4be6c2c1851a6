package vfs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ResolveFunc turns one file value into its resolved form. path is the
// file's slash separated location in the tree.
type ResolveFunc[T, U any] func(ctx context.Context, path string, value T) (U, error)

// Resolve maps every file of root through fn and returns a tree of the same
// shape. All files are resolved concurrently and fn is called exactly once per
// file. If any call fails the context passed to the others is canceled and
// Resolve returns the first error without a tree.
func Resolve[T, U any](ctx context.Context, root *Node[T], fn ResolveFunc[T, U]) (*Node[U], error) {
	g, gctx := errgroup.WithContext(ctx)
	out := resolve(gctx, g, "", root, fn)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve builds the output skeleton synchronously. Each goroutine writes
// only to its own leaf, and Wait orders those writes before the caller reads.
func resolve[T, U any](ctx context.Context, g *errgroup.Group, path string, n *Node[T], fn ResolveFunc[T, U]) *Node[U] {
	if !n.IsDir() {
		leaf := &Node[U]{kind: KindFile}
		value := n.value
		g.Go(func() error {
			v, err := fn(ctx, path, value)
			if err != nil {
				return err
			}
			leaf.value = v
			return nil
		})
		return leaf
	}

	children := make(map[string]*Node[U], len(n.children))
	for name, child := range n.children {
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		children[name] = resolve(ctx, g, childPath, child, fn)
	}
	return &Node[U]{kind: KindDirectory, children: children}
}
