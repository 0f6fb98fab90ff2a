package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/repository"
)

// TreeRepository implements repository.TreeRepository for SQLite
type TreeRepository struct {
	db *DB
}

// NewTreeRepository creates a new TreeRepository
func NewTreeRepository(db *DB) *TreeRepository {
	return &TreeRepository{db: db}
}

// Load rebuilds the stored tree.
func (r *TreeRepository) Load(ctx context.Context) (*task.Node, error) {
	arena := task.Arena{
		Nodes:    make(map[int]*task.Node),
		Children: make(map[int][]int),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, parent_id, name, deadline, status, category, comments
		FROM tasks
		ORDER BY parent_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	roots := 0
	for rows.Next() {
		var (
			n        task.Node
			parentID sql.NullInt64
			category sql.NullString
		)
		if err := rows.Scan(&n.ID, &parentID, &n.Name, &n.Deadline, &n.Status, &category, &n.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		n.Category = category.String
		arena.Nodes[n.ID] = &n
		if parentID.Valid {
			pid := int(parentID.Int64)
			arena.Children[pid] = append(arena.Children[pid], n.ID)
		} else {
			arena.Root = n.ID
			roots++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	if len(arena.Nodes) == 0 {
		return nil, repository.ErrNotFound
	}
	if roots != 1 {
		return nil, fmt.Errorf("failed to load tasks: %w: %d roots", task.ErrInvalidTree, roots)
	}

	if err := r.loadTimetable(ctx, arena.Nodes); err != nil {
		return nil, err
	}

	root, err := arena.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return root, nil
}

func (r *TreeRepository) loadTimetable(ctx context.Context, nodes map[int]*task.Node) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, start, duration
		FROM timetable
		ORDER BY task_id, seq
	`)
	if err != nil {
		return fmt.Errorf("failed to load timetable: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var s task.Session
		if err := rows.Scan(&id, &s.Start, &s.Duration); err != nil {
			return fmt.Errorf("failed to scan session: %w", err)
		}
		if n, ok := nodes[id]; ok {
			n.Timetable = append(n.Timetable, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating timetable rows: %w", err)
	}
	return nil
}

// Save replaces the stored tree with root in a single transaction.
func (r *TreeRepository) Save(ctx context.Context, root *task.Node) error {
	if root == nil {
		return repository.ErrInvalidInput
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable`); err != nil {
		return fmt.Errorf("failed to clear timetable: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	insertTask, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, parent_id, position, name, deadline, status, category, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare task insert: %w", err)
	}
	defer insertTask.Close()

	insertSession, err := tx.PrepareContext(ctx, `
		INSERT INTO timetable (task_id, seq, start, duration)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer insertSession.Close()

	// pre-order guarantees parents are inserted before their children
	for n := range root.All() {
		var parentID, category any
		position := 0
		if p := n.Parent(); p != nil && n != root {
			parentID = p.ID
			position = childIndex(p, n)
		}
		if n.Category != "" {
			category = n.Category
		}

		if _, err := insertTask.ExecContext(ctx,
			n.ID, parentID, position, n.Name, n.Deadline, n.Status, category, n.Comments,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate task id %d", repository.ErrInvalidInput, n.ID)
			}
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			return fmt.Errorf("failed to insert task %d: %w", n.ID, err)
		}

		for seq, s := range n.Timetable {
			if _, err := insertSession.ExecContext(ctx, n.ID, seq, s.Start, s.Duration); err != nil {
				return fmt.Errorf("failed to insert session of task %d: %w", n.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NextID returns one more than the largest stored id, 0 for an empty store.
func (r *TreeRepository) NextID(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), -1) + 1 FROM tasks`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next id: %w", err)
	}
	return next, nil
}

func childIndex(parent, child *task.Node) int {
	for i, c := range parent.Children() {
		if c == child {
			return i
		}
	}
	return 0
}
