package habit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository/memory"
)

func TestHabitToggle(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), nil)

	created, err := svc.Create(ctx, &domain.Habit{
		UserID: "u1", Title: "read", Frequency: "daily",
	})
	require.NoError(t, err)

	done, err := svc.Toggle(ctx, "u1", created.ID, "2026-09-01")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.Toggle(ctx, "u1", created.ID, "2026-09-01")
	require.NoError(t, err)
	assert.False(t, done)

	// Other dates are untouched.
	done, err = svc.Toggle(ctx, "u1", created.ID, "2026-09-02")
	require.NoError(t, err)
	assert.True(t, done)

	got, err := svc.GetByID(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.False(t, got.Status["2026-09-01"])
	assert.True(t, got.Status["2026-09-02"])
}

func TestHabitToggleMissing(t *testing.T) {
	svc := New(memory.NewStore(), nil)
	_, err := svc.Toggle(context.Background(), "u1", "nope", "2026-09-01")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestHabitCreateRequiresTitle(t *testing.T) {
	svc := New(memory.NewStore(), nil)
	_, err := svc.Create(context.Background(), &domain.Habit{UserID: "u1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestHabitListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), nil)
	created, err := svc.Create(ctx, &domain.Habit{UserID: "u1", Title: "stretch"})
	require.NoError(t, err)

	habits, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "stretch", habits[0].Title)

	require.NoError(t, svc.Delete(ctx, "u1", created.ID))
	err = svc.Delete(ctx, "u1", created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
