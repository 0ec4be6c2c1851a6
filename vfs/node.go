package vfs

import (
	"sort"
	"strings"
)

// Kind tags a node as a file or a directory
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Node is one entry of a virtual file tree. Nodes are never mutated after
// construction; derive new trees with With.
type Node[T any] struct {
	value    T
	children map[string]*Node[T]
	kind     Kind
}

// File creates a file node holding value
func File[T any](value T) *Node[T] {
	return &Node[T]{kind: KindFile, value: value}
}

// Dir creates a directory node. The map is copied; nil children are dropped.
func Dir[T any](children map[string]*Node[T]) *Node[T] {
	c := make(map[string]*Node[T], len(children))
	for name, child := range children {
		if child != nil {
			c[name] = child
		}
	}
	return &Node[T]{kind: KindDirectory, children: c}
}

func (n *Node[T]) Kind() Kind { return n.kind }

func (n *Node[T]) IsDir() bool { return n.kind == KindDirectory }

// Value returns the file value, or the zero T for directories
func (n *Node[T]) Value() T { return n.value }

// Len returns the number of direct children
func (n *Node[T]) Len() int { return len(n.children) }

// Child returns the direct child with the given name
func (n *Node[T]) Child(name string) (*Node[T], bool) {
	if n.kind != KindDirectory {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// Names returns the names of the direct children in sorted order
func (n *Node[T]) Names() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of the directory n with child stored under name,
// replacing any existing entry. n itself is left untouched.
func (n *Node[T]) With(name string, child *Node[T]) *Node[T] {
	c := make(map[string]*Node[T], len(n.children)+1)
	for k, v := range n.children {
		c[k] = v
	}
	c[name] = child
	return &Node[T]{kind: KindDirectory, children: c}
}

// Lookup descends from n along path. It fails when a segment is missing or
// when the path continues past a file.
func (n *Node[T]) Lookup(path string) (*Node[T], bool) {
	cur := n
	for _, seg := range Split(path) {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Split breaks a slash separated path into segments, skipping empty and "."
// segments.
func Split(path string) []string {
	raw := strings.Split(path, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// Join is the inverse of Split for already clean segments
func Join(segs ...string) string {
	return strings.Join(segs, "/")
}

// WalkFunc is called for every node visited by Walk
type WalkFunc[T any] func(path string, n *Node[T]) error

// Walk visits root and all of its descendants depth first, children in name
// order. The root is visited with the empty path. The first error stops the
// walk and is returned.
func Walk[T any](root *Node[T], fn WalkFunc[T]) error {
	return walk(root, "", fn)
}

func walk[T any](n *Node[T], path string, fn WalkFunc[T]) error {
	if err := fn(path, n); err != nil {
		return err
	}
	if !n.IsDir() {
		return nil
	}
	for _, name := range n.Names() {
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		if err := walk(n.children[name], childPath, fn); err != nil {
			return err
		}
	}
	return nil
}

// Files returns the paths of all file leaves in walk order
func Files[T any](root *Node[T]) []string {
	var paths []string
	_ = Walk(root, func(path string, n *Node[T]) error {
		if !n.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}
