package task

import "slices"

// Copy returns a detached copy of n without parent or children.
func (n *Node) Copy() *Node {
	return &Node{
		ID:        n.ID,
		Name:      n.Name,
		Deadline:  n.Deadline,
		Timetable: slices.Clone(n.Timetable),
		Status:    n.Status,
		Category:  n.Category,
		Comments:  n.Comments,
	}
}

// CopyOfTree returns a copy of the whole subtree. The copied root keeps the
// parent link of n but is not listed among that parent's children.
func (n *Node) CopyOfTree() *Node {
	c := n.deepCopy()
	c.parent = n.parent
	return c
}

func (n *Node) deepCopy() *Node {
	c := n.Copy()
	for _, child := range n.children {
		cc := child.deepCopy()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
