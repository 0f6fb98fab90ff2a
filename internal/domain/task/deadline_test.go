package task_test

import (
	"testing"
	"time"

	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func TestOrdinal(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(1969, 12, 31, 23, 59, 0, 0, time.UTC), 719162},
		{time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 719163},
		{time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 738946},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, task.Ordinal(tc.date), tc.date.String())
		y, m, d := tc.date.Date()
		require.Equal(t, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), task.FromOrdinal(tc.want))
	}
}

func TestOrdinal_UsesLocalDate(t *testing.T) {
	loc := time.FixedZone("east", 10*60*60)
	// 2024-03-01 20:00 UTC is already March 2nd in loc
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC).In(loc)
	require.Equal(t, 738947, task.Ordinal(at))
}

func TestDaysLeft(t *testing.T) {
	n := task.New(1, "due", 738950)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.Equal(t, 4, n.DaysLeft(now))
}
