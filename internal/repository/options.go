package repository

import "github.com/rpggio/tasktory/internal/domain/task"

// SearchOptions narrows a task search.
type SearchOptions struct {
	Statuses []task.Status
	Category string
	Limit    int
}
