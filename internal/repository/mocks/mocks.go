package mocks

import (
	"context"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/repository"
	"github.com/stretchr/testify/mock"
)

// TreeRepository is a mock for repository.TreeRepository.
type TreeRepository struct {
	mock.Mock
}

func (m *TreeRepository) Load(ctx context.Context) (*task.Node, error) {
	args := m.Called(ctx)
	if root, ok := args.Get(0).(*task.Node); ok {
		return root, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TreeRepository) Save(ctx context.Context, root *task.Node) error {
	args := m.Called(ctx, root)
	return args.Error(0)
}

func (m *TreeRepository) NextID(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *TreeRepository) Search(ctx context.Context, query string, opts repository.SearchOptions) ([]int, error) {
	args := m.Called(ctx, query, opts)
	if ids, ok := args.Get(0).([]int); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
