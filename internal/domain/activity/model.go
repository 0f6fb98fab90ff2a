package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeTaskCreated    ActivityType = "task_created"
	TypeTimeLogged     ActivityType = "time_logged"
	TypeStatusChanged  ActivityType = "status_changed"
	TypeTaskCommitted  ActivityType = "task_committed"
	TypeCommitMissed   ActivityType = "commit_missed"
	TypeTreeReconciled ActivityType = "tree_reconciled"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ChangeSet    string       `json:"change_set,omitempty"`
	TaskID       *int         `json:"task_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
