package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestTreeRepository_Search(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTreeRepository(db)
	ctx := context.Background()

	root := sampleTree()
	review := task.New(4, "review", 0)
	review.Comments = "design doc, 100% done"
	root.Append(review)
	require.NoError(t, repo.Save(ctx, root))

	tests := []struct {
		name  string
		query string
		opts  repository.SearchOptions
		want  []int
	}{
		{name: "name before comments", query: "review", want: []int{4, 2}},
		{name: "case insensitive", query: "DESIGN", want: []int{2, 4}},
		{name: "category", query: "job", want: []int{1}},
		{name: "status filter", query: "review", opts: repository.SearchOptions{Statuses: []task.Status{task.StatusWait}}, want: []int{2}},
		{name: "category filter", query: "o", opts: repository.SearchOptions{Category: "job"}, want: []int{1}},
		{name: "limit", query: "e", opts: repository.SearchOptions{Limit: 2}, want: []int{2, 3}},
		{name: "percent is literal", query: "100%", want: []int{4}},
		{name: "no match", query: "garden", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := repo.Search(ctx, tt.query, tt.opts)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids)
		})
	}

	_, err := repo.Search(ctx, "  ", repository.SearchOptions{})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
