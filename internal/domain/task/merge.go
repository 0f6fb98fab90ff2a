package task

import (
	"cmp"
	"fmt"
	"slices"
)

// Compare orders nodes by recency: the latest session start of each node
// itself, with an empty timetable counting as 0.
func Compare(a, b *Node) int {
	return cmp.Compare(a.LastTimestamp(), b.LastTimestamp())
}

// Less reports whether n is less recent than o.
func (n *Node) Less(o *Node) bool {
	return Compare(n, o) < 0
}

// Merge reconciles two copies of the same task into a new node.
//
// The more recent operand wins name, status and comments; deadline and
// category fall back to the older operand when unset on the newer one.
// Timetables are concatenated, older first. Children are matched by id and
// merged recursively, unmatched children are copied with their subtrees.
// When both operands are equally recent, b is treated as the newer one.
// The result is not attached to any parent's child list.
func Merge(a, b *Node) (*Node, error) {
	if a.ID != b.ID {
		return nil, fmt.Errorf("%w: %d and %d", ErrIdentityMismatch, a.ID, b.ID)
	}

	older, newer := a, b
	if Compare(b, a) < 0 {
		older, newer = b, a
	}

	deadline := newer.Deadline
	if deadline == 0 {
		deadline = older.Deadline
	}
	merged := New(newer.ID, newer.Name, deadline)
	merged.Timetable = append(slices.Clone(older.Timetable), newer.Timetable...)
	merged.Status = newer.Status
	merged.Category = newer.Category
	if merged.Category == "" {
		merged.Category = older.Category
	}
	merged.Comments = newer.Comments
	merged.parent = newer.parent
	if merged.parent == nil {
		merged.parent = older.parent
	}

	pending := make([]*Node, 0, len(newer.children)+len(older.children))
	pending = append(pending, newer.children...)
	pending = append(pending, older.children...)
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]

		i := slices.IndexFunc(pending, func(o *Node) bool { return o.ID == c.ID })
		if i < 0 {
			merged.Append(c.deepCopy())
			continue
		}
		match := pending[i]
		pending = slices.Delete(pending, i, i+1)

		// c comes from the newer side, so it wins ties.
		child, err := Merge(match, c)
		if err != nil {
			return nil, err
		}
		merged.Append(child)
	}

	return merged, nil
}

// Predicate selects nodes for Clip.
type Predicate func(*Node) bool

// NotClosed is the default Clip predicate.
func NotClosed(n *Node) bool {
	return n.Status != StatusClose
}

// Clip returns a new tree with the nodes matching pred and every ancestor
// needed to reach them. It returns nil when nothing in the subtree matches.
func (n *Node) Clip(pred Predicate) *Node {
	if pred == nil {
		pred = NotClosed
	}
	var kept []*Node
	for _, c := range n.children {
		if cc := c.Clip(pred); cc != nil {
			kept = append(kept, cc)
		}
	}
	if len(kept) == 0 && !pred(n) {
		return nil
	}
	view := n.Copy()
	for _, c := range kept {
		view.Append(c)
	}
	return view
}

// Commit merges delta into the node of the same id inside the tree rooted at
// n. The existing node is overwritten in place so references to it stay
// valid, and it keeps its position in the tree. Its descendants are replaced
// by the merged copies, so references held to them no longer point into the
// tree. It returns false when no node carries the delta's id.
func (n *Node) Commit(delta *Node) (bool, error) {
	if delta == nil {
		return false, ErrTypeMismatch
	}
	existing, err := n.Get(ByID(delta.ID), nil)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	merged, err := Merge(existing, delta)
	if err != nil {
		return false, err
	}
	parent := existing.parent
	if err := existing.Jack(merged); err != nil {
		return false, err
	}
	existing.parent = parent
	return true, nil
}

// Jack overwrites every field of n with those of src. The timetable is
// duplicated and the children move to n: src is left without children.
func (n *Node) Jack(src *Node) error {
	if src == nil {
		return ErrTypeMismatch
	}
	if n.ID != src.ID {
		return fmt.Errorf("%w: %d and %d", ErrIdentityMismatch, n.ID, src.ID)
	}
	n.Name = src.Name
	n.Deadline = src.Deadline
	n.Timetable = slices.Clone(src.Timetable)
	n.parent = src.parent
	n.children = slices.Clone(src.children)
	for _, c := range n.children {
		c.parent = n
	}
	src.children = nil
	n.Status = src.Status
	n.Category = src.Category
	n.Comments = src.Comments
	return nil
}

// Replace overwrites the node matching k with src, see Jack. The target
// keeps its position in the tree.
func (n *Node) Replace(k Key, src *Node) error {
	target, err := n.Lookup(k)
	if err != nil {
		return err
	}
	parent := target.parent
	if err := target.Jack(src); err != nil {
		return err
	}
	target.parent = parent
	return nil
}
