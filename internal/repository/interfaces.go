package repository

import (
	"context"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
)

// TreeRepository persists a whole task tree.
type TreeRepository interface {
	// Load returns the stored tree, or ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) (*task.Node, error)
	// Save replaces the stored tree with root.
	Save(ctx context.Context, root *task.Node) error
	// NextID returns one more than the largest stored task id.
	NextID(ctx context.Context) (int, error)
	// Search returns the ids of tasks whose text contains query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]int, error)
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
