package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	taskID := 4
	entry1 := &activity.ActivityEntry{
		ChangeSet:    "cs1",
		TaskID:       &taskID,
		ActivityType: activity.TypeTaskCreated,
		Summary:      "Created task",
		Details:      `{"id":4}`,
	}
	entry2 := &activity.ActivityEntry{
		ActivityType: activity.TypeTreeReconciled,
		Summary:      "Reconciled tree",
	}

	require.NoError(t, repo.Log(ctx, entry1))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Nil(t, entries[0].TaskID)
	require.Empty(t, entries[0].ChangeSet)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, "cs1", entries[1].ChangeSet)
	require.NotNil(t, entries[1].TaskID)
	require.Equal(t, 4, *entries[1].TaskID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	one, two := 1, 2
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ChangeSet: "a", TaskID: &one, ActivityType: activity.TypeTaskCommitted, Summary: "s"}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ChangeSet: "a", TaskID: &two, ActivityType: activity.TypeCommitMissed, Summary: "s"}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{ChangeSet: "b", TaskID: &one, ActivityType: activity.TypeTimeLogged, Summary: "s"}))

	entries, err := repo.List(ctx, activity.ListActivityOptions{ChangeSet: "a"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListActivityOptions{TaskID: &one})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	missed := activity.TypeCommitMissed
	entries, err = repo.List(ctx, activity.ListActivityOptions{ChangeSet: "a", ActivityType: &missed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 2, *entries[0].TaskID)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
