package workspace

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/journal"
)

// ImportJournal parses a journal and commits its task lines. A line whose id
// is unknown creates a new task when its parent path exists; otherwise it is
// reported as missing.
func (s *Service) ImportJournal(ctx context.Context, r io.Reader) (*ImportResult, error) {
	j, err := journal.Parse(r, s.journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		CommitResult: CommitResult{ChangeSet: uuid.NewString()},
		Memo:         j.Memo,
	}
	for _, e := range j.Entries {
		exists, err := root.Contains(task.ByID(e.Delta.ID))
		if err != nil {
			return nil, err
		}
		if exists {
			if err := s.commit(root, []*task.Node{e.Delta}, &result.CommitResult); err != nil {
				return nil, fmt.Errorf("line %d: %w", e.Line, err)
			}
			continue
		}

		parent := findPath(root, path.Dir(e.Path))
		if parent == nil {
			s.logger.Warn("journal task has no parent", "line", e.Line, "path", e.Path, "id", e.Delta.ID)
			result.Missing = append(result.Missing, e.Delta.ID)
			continue
		}
		parent.Append(e.Delta)
		result.Created = append(result.Created, e.Delta.ID)
	}

	if len(result.Committed) > 0 || len(result.Created) > 0 {
		if err := s.tree.Save(ctx, root); err != nil {
			return nil, fmt.Errorf("saving tree: %w", err)
		}
	}

	s.logCommit(ctx, &result.CommitResult)
	for _, id := range result.Created {
		s.logActivity(ctx, &activity.ActivityEntry{
			ChangeSet:    result.ChangeSet,
			TaskID:       &id,
			ActivityType: activity.TypeTaskCreated,
			Summary:      fmt.Sprintf("created task %d from journal of %s", id, j.Date.Format(time.DateOnly)),
		})
	}
	return result, nil
}

// findPath resolves a slash path of names below root, "/" being root itself.
func findPath(root *task.Node, p string) *task.Node {
	n := root
	for _, name := range strings.Split(strings.Trim(p, "/"), "/") {
		if name == "" {
			continue
		}
		var next *task.Node
		for _, c := range n.Children() {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
	return n
}

// Journal writes the journal of the calendar day of date, read in the journal
// location, for the stored tree.
func (s *Service) Journal(ctx context.Context, date time.Time, memo string, w io.Writer) error {
	root, err := s.Tree(ctx)
	if err != nil {
		return err
	}
	loc := s.journal.Location
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	return journal.Render(w, time.Date(y, m, d, 0, 0, 0, 0, loc), root, memo, s.journal)
}
