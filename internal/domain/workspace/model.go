package workspace

import (
	"slices"

	"github.com/rpggio/tasktory/internal/domain/task"
)

const (
	// RootID is the id of the workspace root.
	RootID = 0
	// RootName is the name of the workspace root. It never appears in task paths.
	RootName = "tasks"
)

// CreateRequest describes a task creation request.
type CreateRequest struct {
	ParentID int
	Name     string
	Deadline int
	Category string
	Status   task.Status
}

// CommitResult reports which deltas found their task.
type CommitResult struct {
	ChangeSet string `json:"change_set"`
	Committed []int  `json:"committed"`
	Missing   []int  `json:"missing"`
}

// ImportResult reports the outcome of importing a journal.
type ImportResult struct {
	CommitResult
	// Created lists tasks that were new in the journal and added below their parent path.
	Created []int  `json:"created"`
	Memo    string `json:"memo,omitempty"`
}

// Filter selects tasks for Clip and Report. The zero Filter keeps every task
// that is not closed.
type Filter struct {
	Statuses []task.Status
	Category string
}

func (f Filter) predicate() task.Predicate {
	return func(n *task.Node) bool {
		if len(f.Statuses) == 0 {
			if !task.NotClosed(n) {
				return false
			}
		} else if !slices.Contains(f.Statuses, n.Status) {
			return false
		}
		return f.Category == "" || n.Category == f.Category
	}
}

// openStatuses lists the statuses kept by the zero Filter.
func openStatuses() []task.Status {
	var statuses []task.Status
	for _, st := range task.Statuses {
		if st != task.StatusClose {
			statuses = append(statuses, st)
		}
	}
	return statuses
}

// ReportRow summarizes one task of a report.
type ReportRow struct {
	ID             int         `json:"id"`
	Path           string      `json:"path"`
	Level          int         `json:"level"`
	Status         task.Status `json:"status"`
	Deadline       int         `json:"deadline,omitempty"`
	Category       string      `json:"category,omitempty"`
	OwnTime        int64       `json:"own_time"`
	TreeTime       int64       `json:"tree_time"`
	FirstTimestamp int64       `json:"first_timestamp,omitempty"`
	LastTimestamp  int64       `json:"last_timestamp,omitempty"`
}

// PathOf returns the path of n below the workspace root, "/" for the root.
func PathOf(n *task.Node) string {
	return n.Path("/", func(m *task.Node) string {
		if m.Parent() == nil {
			return ""
		}
		return m.Name
	})
}
