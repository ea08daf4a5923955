package note

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository/memory"
)

func TestNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), nil)

	created, err := svc.Create(ctx, &domain.Note{
		UserID: "u1", Content: "remember the milk", Date: "2026-09-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	notes, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "remember the milk", notes[0].Content)

	require.NoError(t, svc.Update(ctx, "u1", created.ID, map[string]interface{}{
		"content": "milk bought",
	}))
	notes, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "milk bought", notes[0].Content)

	require.NoError(t, svc.Delete(ctx, "u1", created.ID))
	notes, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteCreateRequiresContent(t *testing.T) {
	svc := New(memory.NewStore(), nil)
	_, err := svc.Create(context.Background(), &domain.Note{UserID: "u1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestNoteOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), nil)
	created, err := svc.Create(ctx, &domain.Note{UserID: "u1", Content: "private"})
	require.NoError(t, err)

	notes, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, notes)

	err = svc.Delete(ctx, "u2", created.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
