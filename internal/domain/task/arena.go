package task

import "fmt"

// Arena is the flat form of a tree used where pointers cannot be stored:
// detached nodes keyed by id plus the ordered child ids of every parent.
type Arena struct {
	Root     int
	Nodes    map[int]*Node
	Children map[int][]int
}

// Flatten converts the subtree rooted at n into arena form. The arena holds
// copies, so later changes to the tree do not leak into it.
func Flatten(n *Node) (Arena, error) {
	a := Arena{
		Root:     n.ID,
		Nodes:    make(map[int]*Node),
		Children: make(map[int][]int),
	}
	for m := range n.All() {
		if _, dup := a.Nodes[m.ID]; dup {
			return Arena{}, fmt.Errorf("%w: duplicate id %d", ErrInvalidTree, m.ID)
		}
		a.Nodes[m.ID] = m.Copy()
		for _, c := range m.children {
			a.Children[m.ID] = append(a.Children[m.ID], c.ID)
		}
	}
	return a, nil
}

// Build assembles the tree described by a. Every node must be reachable from
// the root exactly once.
func (a Arena) Build() (*Node, error) {
	if _, ok := a.Nodes[a.Root]; !ok {
		return nil, fmt.Errorf("%w: root %d missing", ErrInvalidTree, a.Root)
	}
	for parent := range a.Children {
		if _, ok := a.Nodes[parent]; !ok {
			return nil, fmt.Errorf("%w: children listed for unknown task %d", ErrInvalidTree, parent)
		}
	}

	built := make(map[int]*Node, len(a.Nodes))
	var build func(id int) (*Node, error)
	build = func(id int) (*Node, error) {
		src, ok := a.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown task %d", ErrInvalidTree, id)
		}
		if _, seen := built[id]; seen {
			return nil, fmt.Errorf("%w: task %d reached twice", ErrInvalidTree, id)
		}
		n := src.Copy()
		built[id] = n
		for _, cid := range a.Children[id] {
			c, err := build(cid)
			if err != nil {
				return nil, err
			}
			n.Append(c)
		}
		return n, nil
	}

	root, err := build(a.Root)
	if err != nil {
		return nil, err
	}
	if len(built) != len(a.Nodes) {
		return nil, fmt.Errorf("%w: %d tasks unreachable from root", ErrInvalidTree, len(a.Nodes)-len(built))
	}
	return root, nil
}
