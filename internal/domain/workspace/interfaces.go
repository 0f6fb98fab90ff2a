package workspace

import (
	"context"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/repository"
)

// TreeRepository persists the workspace tree.
type TreeRepository interface {
	Load(ctx context.Context) (*task.Node, error)
	Save(ctx context.Context, root *task.Node) error
	NextID(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, opts repository.SearchOptions) ([]int, error)
}

// ActivityRepository logs workspace activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
