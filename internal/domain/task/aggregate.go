package task

// TotalTime returns the summed duration of the node's own sessions.
func (n *Node) TotalTime() int64 {
	var total int64
	for _, s := range n.Timetable {
		total += s.Duration
	}
	return total
}

// TotalTimeOfTree returns the summed duration of every session in the subtree.
func (n *Node) TotalTimeOfTree() int64 {
	total := n.TotalTime()
	for _, c := range n.children {
		total += c.TotalTimeOfTree()
	}
	return total
}

// FirstTimestamp returns the earliest session start of the node itself, or 0.
func (n *Node) FirstTimestamp() int64 {
	if len(n.Timetable) == 0 {
		return 0
	}
	first := n.Timetable[0].Start
	for _, s := range n.Timetable[1:] {
		first = min(first, s.Start)
	}
	return first
}

// LastTimestamp returns the latest session start of the node itself, or 0.
func (n *Node) LastTimestamp() int64 {
	if len(n.Timetable) == 0 {
		return 0
	}
	last := n.Timetable[0].Start
	for _, s := range n.Timetable[1:] {
		last = max(last, s.Start)
	}
	return last
}

// TimetableOfTree returns the sessions of n followed by those of every
// descendant in pre-order.
func (n *Node) TimetableOfTree() []Session {
	var sessions []Session
	for m := range n.All() {
		sessions = append(sessions, m.Timetable...)
	}
	return sessions
}
