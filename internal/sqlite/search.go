package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/tasktory/internal/repository"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns the ids of tasks whose name, comments or category contain
// query, case-insensitively. Name matches come first, then ascending id.
func (r *TreeRepository) Search(ctx context.Context, query string, opts repository.SearchOptions) ([]int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", repository.ErrInvalidInput)
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"

	baseQuery := `
		SELECT id, CASE WHEN name LIKE ? ESCAPE '\' THEN 0 ELSE 1 END AS rank
		FROM tasks
		WHERE (name LIKE ? ESCAPE '\' OR comments LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\')
	`
	args := []any{pattern, pattern, pattern, pattern}

	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		baseQuery += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	if opts.Category != "" {
		baseQuery += " AND category = ?"
		args = append(args, opts.Category)
	}

	baseQuery += " ORDER BY rank, id"
	if opts.Limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id, rank int
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
