package task

import (
	"fmt"
	"iter"
	"path"
)

// All yields n and every descendant in pre-order. The sequence can be ranged
// over any number of times.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// find returns the first pre-order match, or nil.
func (n *Node) find(k Key) (*Node, error) {
	if k.kind == keyInvalid {
		return nil, ErrTypeMismatch
	}
	for m := range n.All() {
		if ok, _ := m.Equal(k); ok {
			return m, nil
		}
	}
	return nil, nil
}

// Contains reports whether the subtree rooted at n holds a node matching k.
func (n *Node) Contains(k Key) (bool, error) {
	m, err := n.find(k)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// Get returns the first node matching k, or def when nothing matches.
func (n *Node) Get(k Key, def *Node) (*Node, error) {
	m, err := n.find(k)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return def, nil
	}
	return m, nil
}

// Lookup returns the first node matching k and fails with ErrNotFound when
// nothing matches.
func (n *Node) Lookup(k Key) (*Node, error) {
	m, err := n.find(k)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return m, nil
}

// Path joins nameFn of every ancestor, from the topmost one down to n, below
// root. A nil nameFn uses the node name.
func (n *Node) Path(root string, nameFn func(*Node) string) string {
	if nameFn == nil {
		nameFn = func(m *Node) string { return m.Name }
	}
	prefix := root
	if n.parent != nil {
		prefix = n.parent.Path(root, nameFn)
	}
	return path.Join(prefix, nameFn(n))
}

// Level returns the distance from the topmost ancestor, which is level 0.
func (n *Node) Level() int {
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		level++
	}
	return level
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	size := 1
	for _, c := range n.children {
		size += c.Size()
	}
	return size
}
