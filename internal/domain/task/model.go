package task

import (
	"fmt"
	"slices"
	"strings"
)

// Status represents the workflow state of a task node.
type Status string

const (
	StatusOpen  Status = "open"
	StatusWait  Status = "wait"
	StatusClose Status = "close"
	StatusConst Status = "const"
)

// Statuses lists every valid status in journal section order.
var Statuses = []Status{StatusOpen, StatusWait, StatusClose, StatusConst}

// ParseStatus converts s into a Status, rejecting anything outside the enumeration.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Session is one recorded work period: a start in epoch seconds and a duration in seconds.
type Session struct {
	Start    int64 `json:"start" yaml:"start"`
	Duration int64 `json:"duration" yaml:"duration"`
}

// End returns the epoch second at which the session finished.
func (s Session) End() int64 {
	return s.Start + s.Duration
}

// Node is a unit of work inside a task tree.
//
// Children are owned exclusively by their parent and the parent link is only
// ever set by Append (or taken over by Jack), so a node reachable from a tree
// always points back at the node that lists it.
type Node struct {
	ID        int
	Name      string
	Deadline  int // proleptic Gregorian day ordinal, see Ordinal
	Timetable []Session
	Status    Status
	Category  string
	Comments  string

	parent   *Node
	children []*Node
}

// New creates a detached open node with an empty timetable.
func New(id int, name string, deadline int) *Node {
	return &Node{
		ID:       id,
		Name:     name,
		Deadline: deadline,
		Status:   StatusOpen,
	}
}

// Parent returns the node that owns n, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children of n in order. The returned slice is a copy.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// SetStatus changes the status after validating it.
func (n *Node) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	n.Status = s
	return nil
}

// AddTime records a work session. Overlaps and duplicates are kept as is.
func (n *Node) AddTime(start, duration int64) *Node {
	n.Timetable = append(n.Timetable, Session{Start: start, Duration: duration})
	return n
}

// Append attaches child as the last child of n.
func (n *Node) Append(child *Node) *Node {
	if child.parent != nil && child.parent != n {
		child.parent.detach(child)
	}
	n.children = append(n.children, child)
	child.parent = n
	return n
}

func (n *Node) detach(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%d:%s", n.ID, n.Name)
}
