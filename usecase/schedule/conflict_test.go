package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository/memory"
	"github.com/dhanadurga/backend/usecase/activity"
)

func newEngine(t *testing.T) (*Engine, *activity.Store) {
	t.Helper()
	store := activity.New(memory.NewStore(), nil, nil, nil)
	return New(store, nil), store
}

func seed(t *testing.T, store *activity.Store, userID, title, date, start, end string, category domain.Category) *domain.Activity {
	t.Helper()
	created, err := store.Create(context.Background(), &domain.Activity{
		UserID:    userID,
		Title:     title,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Category:  category,
	})
	require.NoError(t, err)
	return created
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"back to back", "09:00", "10:00", "10:00", "11:00", false},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"nested", "09:00", "12:00", "10:00", "11:00", true},
		{"disjoint", "09:00", "10:00", "14:00", "15:00", false},
		{"point inside interval", "10:30", "", "10:00", "11:00", true},
		{"point at interval start", "10:00", "", "10:00", "11:00", false},
		{"point at interval end", "11:00", "", "10:00", "11:00", false},
		{"interval vs inner point", "10:00", "11:00", "10:30", "", true},
		{"two points same time", "10:00", "", "10:00", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
		})
	}
}

func TestHasConflict(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	seed(t, store, "u1", "standup", "2026-09-01", "09:00", "10:00", domain.CategoryMeeting)

	conflicted, colliding, err := engine.HasConflict(ctx, "u1", "2026-09-01", "09:30", "10:30", "")
	require.NoError(t, err)
	assert.True(t, conflicted)
	require.Len(t, colliding, 1)
	assert.Equal(t, "standup", colliding[0].Title)

	conflicted, _, err = engine.HasConflict(ctx, "u1", "2026-09-01", "10:00", "11:00", "")
	require.NoError(t, err)
	assert.False(t, conflicted)

	// Another user's items never collide.
	conflicted, _, err = engine.HasConflict(ctx, "u2", "2026-09-01", "09:30", "10:30", "")
	require.NoError(t, err)
	assert.False(t, conflicted)

	// A different day is clear.
	conflicted, _, err = engine.HasConflict(ctx, "u1", "2026-09-02", "09:30", "10:30", "")
	require.NoError(t, err)
	assert.False(t, conflicted)
}

func TestHasConflictExcludesSelf(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	item := seed(t, store, "u1", "focus block", "2026-09-01", "09:00", "10:00", domain.CategoryWork)

	conflicted, _, err := engine.HasConflict(ctx, "u1", "2026-09-01", "09:00", "10:00", item.ID)
	require.NoError(t, err)
	assert.False(t, conflicted)
}

func TestHasConflictSkipsUntimedItems(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	seed(t, store, "u1", "someday", "2026-09-01", "", "", domain.CategoryTask)

	conflicted, _, err := engine.HasConflict(ctx, "u1", "2026-09-01", "09:00", "10:00", "")
	require.NoError(t, err)
	assert.False(t, conflicted)
}

func TestFreeSlots(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	seed(t, store, "u1", "review", "2026-09-01", "10:00", "11:00", domain.CategoryWork)
	seed(t, store, "u1", "lunch", "2026-09-01", "13:00", "14:00", domain.CategoryPersonal)

	slots, err := engine.FreeSlots(ctx, "u1", "2026-09-01", "", "")
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Start: "09:00", End: "10:00"},
		{Start: "11:00", End: "13:00"},
		{Start: "14:00", End: "21:00"},
	}, slots)
}

func TestFreeSlotsEmptyDay(t *testing.T) {
	engine, _ := newEngine(t)
	slots, err := engine.FreeSlots(context.Background(), "u1", "2026-09-01", "", "")
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Start: "09:00", End: "21:00"}}, slots)
}

func TestFreeSlotsClampsToWindow(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	seed(t, store, "u1", "early run", "2026-09-01", "06:00", "09:30", domain.CategoryRoutine)
	seed(t, store, "u1", "late call", "2026-09-01", "20:30", "22:00", domain.CategoryMeeting)

	slots, err := engine.FreeSlots(ctx, "u1", "2026-09-01", "", "")
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Start: "09:30", End: "20:30"}}, slots)
}

func TestMergeIntervals(t *testing.T) {
	merged := mergeIntervals([]Slot{
		{Start: "11:00", End: "12:00"},
		{Start: "09:00", End: "10:00"},
		{Start: "09:30", End: "11:00"},
		{Start: "09:40", End: "09:50"},
	})
	assert.Equal(t, []Slot{{Start: "09:00", End: "12:00"}}, merged)
}

func TestRangeIntersects(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	seed(t, store, "u1", "sprint review", "2026-09-03", "10:00", "11:00", domain.CategoryMeeting)
	seed(t, store, "u1", "meditation", "2026-09-03", "07:00", "07:30", domain.CategoryRoutine)

	blockers, err := engine.RangeIntersects(ctx, "u1", "2026-09-01", "2026-09-05")
	require.NoError(t, err)
	require.Len(t, blockers, 1)
	assert.Equal(t, "sprint review", blockers[0].Title)

	blockers, err = engine.RangeIntersects(ctx, "u1", "2026-09-04", "2026-09-06")
	require.NoError(t, err)
	assert.Empty(t, blockers)
}
