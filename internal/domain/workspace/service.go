package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/journal"
	"github.com/rpggio/tasktory/internal/repository"
)

// Service applies task operations to the persisted workspace tree.
//
// Every mutating call loads the tree, changes it and saves it back while
// holding the service lock.
type Service struct {
	tree       TreeRepository
	activities ActivityRepository
	journal    journal.Options
	logger     *slog.Logger

	mu sync.Mutex
}

// NewService creates a new workspace service. activities may be nil.
func NewService(tree TreeRepository, activities ActivityRepository, opts journal.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		tree:       tree,
		activities: activities,
		journal:    opts,
		logger:     logger,
	}
}

// Tree returns the stored tree, creating an empty workspace on first use.
func (s *Service) Tree(ctx context.Context) (*task.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (*task.Node, error) {
	root, err := s.tree.Load(ctx)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading tree: %w", err)
	}

	root = task.New(RootID, RootName, 0)
	if err := s.tree.Save(ctx, root); err != nil {
		return nil, fmt.Errorf("initializing tree: %w", err)
	}
	s.logger.Info("initialized empty workspace")
	return root, nil
}

// Get returns the task matching key inside the stored tree.
func (s *Service) Get(ctx context.Context, key task.Key) (*task.Node, error) {
	root, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return lookup(root, key)
}

func lookup(root *task.Node, key task.Key) (*task.Node, error) {
	n, err := root.Lookup(key)
	if errors.Is(err, task.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, key)
	}
	return n, err
}

// Create adds a new task below an existing parent.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*task.Node, error) {
	if err := task.ValidateName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	status := req.Status
	if status == "" {
		status = task.StatusOpen
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	parent, err := root.Get(task.ByID(req.ParentID), nil)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: %d", ErrParentNotFound, req.ParentID)
	}
	for _, c := range parent.Children() {
		if c.Name == req.Name {
			return nil, fmt.Errorf("%w: %q already exists below task %d", ErrInvalidInput, req.Name, parent.ID)
		}
	}

	id, err := s.tree.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating id: %w", err)
	}

	n := task.New(id, req.Name, req.Deadline)
	n.Status = status
	n.Category = req.Category
	parent.Append(n)

	if err := s.tree.Save(ctx, root); err != nil {
		return nil, fmt.Errorf("saving tree: %w", err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ChangeSet:    uuid.NewString(),
		TaskID:       &n.ID,
		ActivityType: activity.TypeTaskCreated,
		Summary:      fmt.Sprintf("created task %s", PathOf(n)),
	})
	return n, nil
}

// LogTime records a work session on a task.
func (s *Service) LogTime(ctx context.Context, id int, start time.Time, duration time.Duration) (*task.Node, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	seconds := int64(duration / time.Second)

	n, err := s.update(ctx, id, func(n *task.Node) error {
		n.AddTime(start.Unix(), seconds)
		return nil
	})
	if err != nil {
		return nil, err
	}

	details, _ := json.Marshal(task.Session{Start: start.Unix(), Duration: seconds})
	s.logActivity(ctx, &activity.ActivityEntry{
		ChangeSet:    uuid.NewString(),
		TaskID:       &n.ID,
		ActivityType: activity.TypeTimeLogged,
		Summary:      fmt.Sprintf("logged %s on %s", duration.Round(time.Second), PathOf(n)),
		Details:      string(details),
	})
	return n, nil
}

// SetStatus changes the status of a task.
func (s *Service) SetStatus(ctx context.Context, id int, status task.Status) (*task.Node, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	var previous task.Status
	n, err := s.update(ctx, id, func(n *task.Node) error {
		previous = n.Status
		return n.SetStatus(status)
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ChangeSet:    uuid.NewString(),
		TaskID:       &n.ID,
		ActivityType: activity.TypeStatusChanged,
		Summary:      fmt.Sprintf("%s: %s -> %s", PathOf(n), previous, status),
	})
	return n, nil
}

// SetComments replaces the free-form comments of a task.
func (s *Service) SetComments(ctx context.Context, id int, comments string) (*task.Node, error) {
	return s.update(ctx, id, func(n *task.Node) error {
		n.Comments = comments
		return nil
	})
}

func (s *Service) update(ctx context.Context, id int, fn func(*task.Node) error) (*task.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	n, err := lookup(root, task.ByID(id))
	if err != nil {
		return nil, err
	}
	if err := fn(n); err != nil {
		return nil, err
	}
	if err := s.tree.Save(ctx, root); err != nil {
		return nil, fmt.Errorf("saving tree: %w", err)
	}
	return n, nil
}

// Commit merges each delta into the task of the same id. Deltas whose task
// doesn't exist are reported as missing and otherwise ignored.
func (s *Service) Commit(ctx context.Context, deltas []*task.Node) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{ChangeSet: uuid.NewString()}
	if err := s.commit(root, deltas, result); err != nil {
		return nil, err
	}
	if len(result.Committed) > 0 {
		if err := s.tree.Save(ctx, root); err != nil {
			return nil, fmt.Errorf("saving tree: %w", err)
		}
	}
	s.logCommit(ctx, result)
	return result, nil
}

func (s *Service) commit(root *task.Node, deltas []*task.Node, result *CommitResult) error {
	for _, delta := range deltas {
		if delta == nil {
			return fmt.Errorf("%w: nil delta", ErrInvalidInput)
		}
		ok, err := root.Commit(delta)
		if err != nil {
			return fmt.Errorf("committing task %d: %w", delta.ID, err)
		}
		if ok {
			result.Committed = append(result.Committed, delta.ID)
		} else {
			result.Missing = append(result.Missing, delta.ID)
		}
	}
	return nil
}

func (s *Service) logCommit(ctx context.Context, result *CommitResult) {
	for _, id := range result.Committed {
		s.logActivity(ctx, &activity.ActivityEntry{
			ChangeSet:    result.ChangeSet,
			TaskID:       &id,
			ActivityType: activity.TypeTaskCommitted,
			Summary:      fmt.Sprintf("committed task %d", id),
		})
	}
	for _, id := range result.Missing {
		s.logActivity(ctx, &activity.ActivityEntry{
			ChangeSet:    result.ChangeSet,
			TaskID:       &id,
			ActivityType: activity.TypeCommitMissed,
			Summary:      fmt.Sprintf("no task with id %d", id),
		})
	}
}

// Reconcile merges another copy of the workspace tree into the stored one.
func (s *Service) Reconcile(ctx context.Context, other *task.Node) (*task.Node, error) {
	if other == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := task.Merge(root, other)
	if err != nil {
		return nil, fmt.Errorf("reconciling tree: %w", err)
	}
	// a task moved to a different parent in one copy shows up twice
	if _, err := task.Flatten(merged); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.tree.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("saving tree: %w", err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ChangeSet:    uuid.NewString(),
		ActivityType: activity.TypeTreeReconciled,
		Summary:      fmt.Sprintf("reconciled %d tasks", merged.Size()),
	})
	return merged, nil
}

// Clip returns a copy of the tree reduced to the tasks matching filter and
// their ancestors, or nil when nothing matches.
func (s *Service) Clip(ctx context.Context, filter Filter) (*task.Node, error) {
	root, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return root.Clip(filter.predicate()), nil
}

// Search returns the tasks whose name, comments or category contain query,
// name matches first. A zero limit returns every match.
func (s *Service) Search(ctx context.Context, query string, filter Filter, limit int) ([]*task.Node, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidInput)
	}
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = openStatuses()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.tree.Search(ctx, query, repository.SearchOptions{
		Statuses: statuses,
		Category: filter.Category,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("searching tasks: %w", err)
	}

	nodes := make([]*task.Node, 0, len(ids))
	for _, id := range ids {
		n, err := root.Get(task.ByID(id), nil)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// Report summarizes the tasks selected by filter in pre-order. Subtree times
// cover every descendant, including the ones the filter hides.
func (s *Service) Report(ctx context.Context, filter Filter) ([]ReportRow, error) {
	root, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	view := root.Clip(filter.predicate())
	if view == nil {
		return nil, nil
	}

	var rows []ReportRow
	for n := range view.All() {
		full, err := root.Get(task.ByID(n.ID), n)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ReportRow{
			ID:             n.ID,
			Path:           PathOf(n),
			Level:          n.Level(),
			Status:         n.Status,
			Deadline:       n.Deadline,
			Category:       n.Category,
			OwnTime:        n.TotalTime(),
			TreeTime:       full.TotalTimeOfTree(),
			FirstTimestamp: n.FirstTimestamp(),
			LastTimestamp:  n.LastTimestamp(),
		})
	}
	return rows, nil
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", entry.ActivityType, "error", err)
	}
}
