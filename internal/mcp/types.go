package mcp

import (
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/domain/workspace"
)

// dateLayout is used for deadlines and journal dates on the wire.
const dateLayout = time.DateOnly

type GetTreeParams struct{}

type GetTaskParams struct {
	ID   *int   `json:"id,omitempty" jsonschema:"task id"`
	Name string `json:"name,omitempty" jsonschema:"task name, used when id is omitted"`
}

type CreateTaskParams struct {
	ParentID int    `json:"parent_id" jsonschema:"id of the parent task, 0 for the workspace root"`
	Name     string `json:"name" jsonschema:"task name, a single path segment"`
	Deadline string `json:"deadline,omitempty" jsonschema:"due date as YYYY-MM-DD"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty" jsonschema:"open, wait, close or const"`
}

type LogTimeParams struct {
	ID      int    `json:"id"`
	Start   string `json:"start,omitempty" jsonschema:"RFC 3339 start of the session, defaults to now minus the duration"`
	Minutes int    `json:"minutes" jsonschema:"session length in minutes"`
}

type SetStatusParams struct {
	ID     int    `json:"id"`
	Status string `json:"status" jsonschema:"open, wait, close or const"`
}

type SetCommentsParams struct {
	ID       int    `json:"id"`
	Comments string `json:"comments"`
}

type CommitJournalParams struct {
	Journal string `json:"journal" jsonschema:"journal text, see tasktory://docs/journal"`
}

type RenderJournalParams struct {
	Date string `json:"date,omitempty" jsonschema:"journal day as YYYY-MM-DD, defaults to today"`
	Memo string `json:"memo,omitempty"`
}

type FilterParams struct {
	Statuses []string `json:"statuses,omitempty" jsonschema:"statuses to keep, defaults to every status but close"`
	Category string   `json:"category,omitempty"`
}

type SearchTasksParams struct {
	Query    string   `json:"query" jsonschema:"text to look for in names, comments and categories"`
	Statuses []string `json:"statuses,omitempty" jsonschema:"statuses to keep, defaults to every status but close"`
	Category string   `json:"category,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

type RecentActivityParams struct {
	TaskID    *int   `json:"task_id,omitempty"`
	ChangeSet string `json:"change_set,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type SessionResponse struct {
	Start    string `json:"start"`
	Duration int64  `json:"duration"`
}

type TaskResponse struct {
	ID       int               `json:"id"`
	ParentID *int              `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Status   string            `json:"status"`
	Deadline string            `json:"deadline,omitempty"`
	Category string            `json:"category,omitempty"`
	Comments string            `json:"comments,omitempty"`
	Children []int             `json:"children,omitempty"`
	OwnTime  int64             `json:"own_time"`
	TreeTime int64             `json:"tree_time"`
	Sessions []SessionResponse `json:"sessions,omitempty"`
}

// TreeResponse lists the tasks of a tree in pre-order. An empty list means
// nothing matched.
type TreeResponse struct {
	Root  *int           `json:"root,omitempty"`
	Tasks []TaskResponse `json:"tasks"`
}

type SearchTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

type CommitJournalResponse struct {
	ChangeSet string `json:"change_set"`
	Committed []int  `json:"committed"`
	Created   []int  `json:"created"`
	Missing   []int  `json:"missing"`
	Memo      string `json:"memo,omitempty"`
}

type JournalResponse struct {
	Journal string `json:"journal"`
}

type ReportRowResponse struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	Level     int    `json:"level"`
	Status    string `json:"status"`
	Deadline  string `json:"deadline,omitempty"`
	Category  string `json:"category,omitempty"`
	OwnTime   int64  `json:"own_time"`
	TreeTime  int64  `json:"tree_time"`
	FirstSeen string `json:"first_seen,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
}

type ReportResponse struct {
	Rows []ReportRowResponse `json:"rows"`
}

type ActivityEntryResponse struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	ChangeSet string `json:"change_set,omitempty"`
	TaskID    *int   `json:"task_id,omitempty"`
	Summary   string `json:"summary"`
	Details   string `json:"details,omitempty"`
}

type ActivityResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}

func formatDeadline(ordinal int) string {
	if ordinal == 0 {
		return ""
	}
	return task.FromOrdinal(ordinal).Format(dateLayout)
}

func formatTimestamp(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

func toTaskResponse(n *task.Node) TaskResponse {
	resp := TaskResponse{
		ID:       n.ID,
		Name:     n.Name,
		Path:     workspace.PathOf(n),
		Status:   string(n.Status),
		Deadline: formatDeadline(n.Deadline),
		Category: n.Category,
		Comments: n.Comments,
		OwnTime:  n.TotalTime(),
		TreeTime: n.TotalTimeOfTree(),
	}
	if p := n.Parent(); p != nil {
		id := p.ID
		resp.ParentID = &id
	}
	for _, c := range n.Children() {
		resp.Children = append(resp.Children, c.ID)
	}
	for _, s := range n.Timetable {
		resp.Sessions = append(resp.Sessions, SessionResponse{Start: formatTimestamp(s.Start), Duration: s.Duration})
	}
	return resp
}

func toTreeResponse(root *task.Node) *TreeResponse {
	resp := &TreeResponse{Tasks: []TaskResponse{}}
	if root == nil {
		return resp
	}
	id := root.ID
	resp.Root = &id
	for n := range root.All() {
		t := toTaskResponse(n)
		if n == root {
			t.ParentID = nil
		}
		resp.Tasks = append(resp.Tasks, t)
	}
	return resp
}

func toReportRow(row workspace.ReportRow) ReportRowResponse {
	return ReportRowResponse{
		ID:        row.ID,
		Path:      row.Path,
		Level:     row.Level,
		Status:    string(row.Status),
		Deadline:  formatDeadline(row.Deadline),
		Category:  row.Category,
		OwnTime:   row.OwnTime,
		TreeTime:  row.TreeTime,
		FirstSeen: formatTimestamp(row.FirstTimestamp),
		LastSeen:  formatTimestamp(row.LastTimestamp),
	}
}

func toActivityResponse(entries []activity.ActivityEntry) *ActivityResponse {
	resp := &ActivityResponse{Entries: make([]ActivityEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, ActivityEntryResponse{
			Timestamp: entry.CreatedAt.UTC().Format(time.RFC3339),
			Type:      string(entry.ActivityType),
			ChangeSet: entry.ChangeSet,
			TaskID:    entry.TaskID,
			Summary:   entry.Summary,
			Details:   entry.Details,
		})
	}
	return resp
}
