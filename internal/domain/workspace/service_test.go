package workspace_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/domain/workspace"
	"github.com/rpggio/tasktory/internal/journal"
	"github.com/rpggio/tasktory/internal/repository"
	"github.com/rpggio/tasktory/internal/repository/mocks"
	"github.com/rpggio/tasktory/internal/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var utc = journal.Options{Location: time.UTC}

func newSQLiteService(t *testing.T) (*workspace.Service, *sqlite.ActivityRepository) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	activities := sqlite.NewActivityRepository(db)
	return workspace.NewService(sqlite.NewTreeRepository(db), activities, utc, nil), activities
}

func storedTree() *task.Node {
	root := task.New(workspace.RootID, workspace.RootName, 0)
	work := task.New(1, "work", 0)
	work.AddTime(1000, 100)
	root.Append(work)
	work.Append(task.New(2, "design", 0))
	return root
}

func TestService_TreeInitializesEmptyWorkspace(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	trees.On("Load", ctx).Return(nil, repository.ErrNotFound)
	trees.On("Save", ctx, mock.MatchedBy(func(n *task.Node) bool {
		return n.ID == workspace.RootID && n.Name == workspace.RootName
	})).Return(nil)

	svc := workspace.NewService(trees, nil, utc, nil)
	root, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, root.Size())
	trees.AssertExpectations(t)
}

func TestService_TreeLoadError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	trees := &mocks.TreeRepository{}
	trees.On("Load", ctx).Return(nil, boom)

	svc := workspace.NewService(trees, nil, utc, nil)
	_, err := svc.Tree(ctx)
	require.ErrorIs(t, err, boom)
	trees.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	activities := &mocks.ActivityRepository{}

	root := storedTree()
	trees.On("Load", ctx).Return(root, nil)
	trees.On("NextID", ctx).Return(3, nil)
	trees.On("Save", ctx, root).Return(nil)
	activities.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeTaskCreated && e.TaskID != nil && *e.TaskID == 3 && e.ChangeSet != ""
	})).Return(nil)

	svc := workspace.NewService(trees, activities, utc, nil)
	n, err := svc.Create(ctx, workspace.CreateRequest{ParentID: 1, Name: "review", Category: "job"})
	require.NoError(t, err)
	require.Equal(t, 3, n.ID)
	require.Equal(t, task.StatusOpen, n.Status)
	require.Equal(t, "job", n.Category)
	require.Equal(t, "/work/review", workspace.PathOf(n))
	trees.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	trees.On("Load", ctx).Return(storedTree(), nil)
	svc := workspace.NewService(trees, nil, utc, nil)

	_, err := svc.Create(ctx, workspace.CreateRequest{ParentID: 1, Name: "a/b"})
	require.ErrorIs(t, err, workspace.ErrInvalidInput)
	require.ErrorIs(t, err, task.ErrInvalidName)

	_, err = svc.Create(ctx, workspace.CreateRequest{ParentID: 1, Name: "x", Status: "done"})
	require.ErrorIs(t, err, workspace.ErrInvalidInput)

	_, err = svc.Create(ctx, workspace.CreateRequest{ParentID: 42, Name: "x"})
	require.ErrorIs(t, err, workspace.ErrParentNotFound)

	_, err = svc.Create(ctx, workspace.CreateRequest{ParentID: 1, Name: "design"})
	require.ErrorIs(t, err, workspace.ErrInvalidInput)

	trees.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	trees.On("Load", ctx).Return(storedTree(), nil)
	svc := workspace.NewService(trees, nil, utc, nil)

	n, err := svc.Get(ctx, task.ByName("design"))
	require.NoError(t, err)
	require.Equal(t, 2, n.ID)

	_, err = svc.Get(ctx, task.ByID(99))
	require.ErrorIs(t, err, workspace.ErrTaskNotFound)

	_, err = svc.Get(ctx, task.Key{})
	require.ErrorIs(t, err, task.ErrTypeMismatch)
}

func TestService_ActivityFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	activities := &mocks.ActivityRepository{}
	root := storedTree()
	trees.On("Load", ctx).Return(root, nil)
	trees.On("Save", ctx, root).Return(nil)
	activities.On("Log", ctx, mock.Anything).Return(errors.New("log full"))

	svc := workspace.NewService(trees, activities, utc, nil)
	n, err := svc.SetStatus(ctx, 2, task.StatusWait)
	require.NoError(t, err)
	require.Equal(t, task.StatusWait, n.Status)
}

func TestService_LogTimeAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, activities := newSQLiteService(t)

	work, err := svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "work"})
	require.NoError(t, err)
	require.Equal(t, 1, work.ID)

	start := time.Unix(5000, 0)
	n, err := svc.LogTime(ctx, work.ID, start, 90*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []task.Session{{Start: 5000, Duration: 5400}}, n.Timetable)

	_, err = svc.LogTime(ctx, work.ID, start, 0)
	require.ErrorIs(t, err, workspace.ErrInvalidInput)
	_, err = svc.LogTime(ctx, 99, start, time.Minute)
	require.ErrorIs(t, err, workspace.ErrTaskNotFound)

	_, err = svc.SetStatus(ctx, work.ID, task.StatusWait)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, work.ID, "done")
	require.ErrorIs(t, err, workspace.ErrInvalidInput)

	_, err = svc.SetComments(ctx, work.ID, "ping alice")
	require.NoError(t, err)

	stored, err := svc.Get(ctx, task.ByID(work.ID))
	require.NoError(t, err)
	require.Equal(t, task.StatusWait, stored.Status)
	require.Equal(t, "ping alice", stored.Comments)
	require.Equal(t, int64(5400), stored.TotalTime())

	entries, err := activities.List(ctx, activity.ListActivityOptions{TaskID: &work.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestService_Commit(t *testing.T) {
	ctx := context.Background()
	svc, activities := newSQLiteService(t)

	work, err := svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "work", Deadline: 700000})
	require.NoError(t, err)
	_, err = svc.Create(ctx, workspace.CreateRequest{ParentID: work.ID, Name: "design"})
	require.NoError(t, err)

	delta := task.New(work.ID, "work", 0)
	delta.AddTime(100, 60)
	delta.Status = task.StatusClose

	result, err := svc.Commit(ctx, []*task.Node{delta, task.New(77, "ghost", 0)})
	require.NoError(t, err)
	require.NotEmpty(t, result.ChangeSet)
	require.Equal(t, []int{work.ID}, result.Committed)
	require.Equal(t, []int{77}, result.Missing)

	root, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, root.Size())
	stored, err := root.Lookup(task.ByID(work.ID))
	require.NoError(t, err)
	require.Equal(t, task.StatusClose, stored.Status)
	require.Equal(t, 700000, stored.Deadline)
	require.Len(t, stored.Children(), 1)

	entries, err := activities.List(ctx, activity.ListActivityOptions{ChangeSet: result.ChangeSet})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, err = svc.Commit(ctx, []*task.Node{nil})
	require.ErrorIs(t, err, workspace.ErrInvalidInput)
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSQLiteService(t)

	work, err := svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "work"})
	require.NoError(t, err)
	_, err = svc.LogTime(ctx, work.ID, time.Unix(100, 0), time.Minute)
	require.NoError(t, err)

	other := task.New(workspace.RootID, workspace.RootName, 0)
	laptopWork := task.New(work.ID, "work", 0)
	laptopWork.AddTime(200, 120)
	laptopWork.Status = task.StatusWait
	other.Append(laptopWork)
	other.Append(task.New(9, "errands", 0))

	merged, err := svc.Reconcile(ctx, other)
	require.NoError(t, err)
	require.Equal(t, 3, merged.Size())

	stored, err := svc.Get(ctx, task.ByID(work.ID))
	require.NoError(t, err)
	require.Equal(t, task.StatusWait, stored.Status)
	require.Equal(t, int64(180), stored.TotalTime())

	_, err = svc.Reconcile(ctx, task.New(5, "elsewhere", 0))
	require.ErrorIs(t, err, task.ErrIdentityMismatch)

	// task 9 moved below work in the other copy
	moved := task.New(workspace.RootID, workspace.RootName, 0)
	movedWork := task.New(work.ID, "work", 0)
	movedWork.Append(task.New(9, "errands", 0))
	moved.Append(movedWork)
	_, err = svc.Reconcile(ctx, moved)
	require.ErrorIs(t, err, workspace.ErrInvalidInput)
}

func TestService_ClipAndReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSQLiteService(t)

	work, err := svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "work", Category: "job"})
	require.NoError(t, err)
	design, err := svc.Create(ctx, workspace.CreateRequest{ParentID: work.ID, Name: "design", Category: "job"})
	require.NoError(t, err)
	done, err := svc.Create(ctx, workspace.CreateRequest{ParentID: work.ID, Name: "done", Status: task.StatusClose})
	require.NoError(t, err)
	_, err = svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "home", Category: "life"})
	require.NoError(t, err)

	_, err = svc.LogTime(ctx, design.ID, time.Unix(1000, 0), time.Hour)
	require.NoError(t, err)
	_, err = svc.LogTime(ctx, done.ID, time.Unix(500, 0), 30*time.Minute)
	require.NoError(t, err)

	view, err := svc.Clip(ctx, workspace.Filter{})
	require.NoError(t, err)
	require.Equal(t, 4, view.Size())

	view, err = svc.Clip(ctx, workspace.Filter{Statuses: []task.Status{task.StatusClose}})
	require.NoError(t, err)
	require.Equal(t, 3, view.Size())

	view, err = svc.Clip(ctx, workspace.Filter{Category: "nothing"})
	require.NoError(t, err)
	require.Nil(t, view)

	rows, err := svc.Report(ctx, workspace.Filter{Category: "job"})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "/", rows[0].Path)
	require.Equal(t, int64(5400), rows[0].TreeTime)

	require.Equal(t, "/work", rows[1].Path)
	require.Equal(t, 1, rows[1].Level)
	require.Zero(t, rows[1].OwnTime)
	require.Equal(t, int64(5400), rows[1].TreeTime)

	require.Equal(t, "/work/design", rows[2].Path)
	require.Equal(t, int64(3600), rows[2].OwnTime)
	require.Equal(t, int64(1000), rows[2].FirstTimestamp)
	require.Equal(t, int64(1000), rows[2].LastTimestamp)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSQLiteService(t)

	report, err := svc.Create(ctx, workspace.CreateRequest{ParentID: workspace.RootID, Name: "report", Category: "job"})
	require.NoError(t, err)
	_, err = svc.SetComments(ctx, report.ID, "draft the quarterly numbers")
	require.NoError(t, err)
	numbers, err := svc.Create(ctx, workspace.CreateRequest{ParentID: report.ID, Name: "numbers", Status: task.StatusClose})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "numbers", workspace.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, report.ID, found[0].ID)
	require.Equal(t, "/report", workspace.PathOf(found[0]))

	found, err = svc.Search(ctx, "numbers", workspace.Filter{Statuses: task.Statuses}, 0)
	require.NoError(t, err)
	require.Equal(t, []int{numbers.ID, report.ID}, []int{found[0].ID, found[1].ID})

	_, err = svc.Search(ctx, " ", workspace.Filter{}, 0)
	require.ErrorIs(t, err, workspace.ErrInvalidInput)
}

func TestService_SearchRepositoryError(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	trees.On("Load", ctx).Return(task.New(workspace.RootID, workspace.RootName, 0), nil)
	trees.On("Search", ctx, "x", mock.Anything).Return(nil, errors.New("database is locked"))

	svc := workspace.NewService(trees, nil, utc, nil)
	_, err := svc.Search(ctx, "x", workspace.Filter{}, 5)
	require.ErrorContains(t, err, "database is locked")
	trees.AssertExpectations(t)
}
