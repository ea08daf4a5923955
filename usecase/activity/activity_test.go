package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/repository/memory"
	"github.com/dhanadurga/backend/usecase"
)

func TestPartitionFor(t *testing.T) {
	assert.Equal(t, repository.PartitionWork, PartitionFor(domain.CategoryWork))
	assert.Equal(t, repository.PartitionMeetings, PartitionFor(domain.CategoryMeeting))
	assert.Equal(t, repository.PartitionRoutines, PartitionFor(domain.CategoryRoutine))
	assert.Equal(t, repository.PartitionPersonal, PartitionFor(domain.CategoryPersonal))
	assert.Equal(t, repository.PartitionPlans, PartitionFor(domain.CategoryPlan))
	assert.Equal(t, repository.PartitionTasks, PartitionFor(domain.CategoryTask))
	assert.Equal(t, repository.PartitionTasks, PartitionFor(domain.Category("")))
}

func TestCreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(memory.NewStore(), nil, nil, nil)

	created, err := store.Create(ctx, &domain.Activity{
		UserID:   "u1",
		Title:    "buy groceries",
		Date:     "2026-09-01",
		Category: domain.CategoryPersonal,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)

	got, partition, err := store.GetByID(ctx, created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.PartitionPersonal, partition)
	assert.Equal(t, "buy groceries", got.Title)
}

func TestCreateRejectsMissingOwner(t *testing.T) {
	store := New(memory.NewStore(), nil, nil, nil)
	_, err := store.Create(context.Background(), &domain.Activity{Title: "orphan"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestFindManyFilters(t *testing.T) {
	ctx := context.Background()
	store := New(memory.NewStore(), nil, nil, nil)

	mustCreate := func(title, date, status string, c domain.Category) {
		t.Helper()
		_, err := store.Create(ctx, &domain.Activity{
			UserID: "u1", Title: title, Date: date, Status: status, Category: c,
		})
		require.NoError(t, err)
	}
	mustCreate("standup", "2026-09-01", domain.StatusPending, domain.CategoryMeeting)
	mustCreate("ship release", "2026-09-01", domain.StatusCompleted, domain.CategoryWork)
	mustCreate("dentist", "2026-09-02", domain.StatusPending, domain.CategoryPersonal)

	all, err := store.FindMany(ctx, "u1", Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDate, err := store.FindMany(ctx, "u1", Query{Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byStatus, err := store.FindMany(ctx, "u1", Query{Date: "2026-09-01", Status: domain.StatusPending})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "standup", byStatus[0].Title)

	byCategory, err := store.FindMany(ctx, "u1", Query{Category: "work"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "ship release", byCategory[0].Title)

	other, err := store.FindMany(ctx, "u2", Query{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUpdateByID(t *testing.T) {
	ctx := context.Background()
	store := New(memory.NewStore(), nil, nil, nil)
	created, err := store.Create(ctx, &domain.Activity{
		UserID: "u1", Title: "draft report", Date: "2026-09-01", Category: domain.CategoryWork,
	})
	require.NoError(t, err)

	updated, err := store.UpdateByID(ctx, created.ID, "u1", map[string]interface{}{
		"status": domain.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, "draft report", updated.Title)
}

func TestUpdateByIDMovesAcrossPartitions(t *testing.T) {
	ctx := context.Background()
	store := New(memory.NewStore(), nil, nil, nil)
	created, err := store.Create(ctx, &domain.Activity{
		UserID: "u1", Title: "sync", Date: "2026-09-01", Category: domain.CategoryTask,
	})
	require.NoError(t, err)

	updated, err := store.UpdateByID(ctx, created.ID, "u1", map[string]interface{}{
		"category": "Meeting",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryMeeting, updated.Category)

	_, partition, err := store.GetByID(ctx, created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, repository.PartitionMeetings, partition)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	store := New(memory.NewStore(), nil, nil, nil)
	created, err := store.Create(ctx, &domain.Activity{
		UserID: "u1", Title: "old chore", Category: domain.CategoryTask,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteByID(ctx, created.ID, "u1"))

	_, _, err = store.GetByID(ctx, created.ID, "u1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	err = store.DeleteByID(ctx, "no-such-id", "u1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

type failingStore struct {
	repository.DocumentStore
}

var errStoreDown = errors.New("connection refused")

func (failingStore) Insert(context.Context, string, *repository.Document) (string, error) {
	return "", errStoreDown
}

func (failingStore) DeleteOne(context.Context, string, string, string) (int64, error) {
	return 0, errStoreDown
}

type recordingBuffer struct {
	mutations []usecase.BufferedMutation
	err       error
}

func (b *recordingBuffer) Buffer(_ context.Context, m usecase.BufferedMutation) error {
	if b.err != nil {
		return b.err
	}
	b.mutations = append(b.mutations, m)
	return nil
}

func TestCreateFallsBackToBuffer(t *testing.T) {
	buf := &recordingBuffer{}
	store := New(failingStore{}, buf, nil, nil)

	created, err := store.Create(context.Background(), &domain.Activity{
		UserID: "u1", Title: "offline task", Category: domain.CategoryTask,
	})
	require.NoError(t, err)
	require.Len(t, buf.mutations, 1)
	assert.Equal(t, usecase.OperationCreate, buf.mutations[0].Operation)
	assert.Equal(t, repository.PartitionTasks, buf.mutations[0].Partition)
	assert.Equal(t, created.ID, buf.mutations[0].ID)
}

func TestCreateSurfacesErrorWhenBufferFails(t *testing.T) {
	buf := &recordingBuffer{err: errors.New("buffer full")}
	store := New(failingStore{}, buf, nil, nil)

	_, err := store.Create(context.Background(), &domain.Activity{
		UserID: "u1", Title: "doomed", Category: domain.CategoryTask,
	})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestDeleteFallsBackToBuffer(t *testing.T) {
	buf := &recordingBuffer{}
	store := New(failingStore{}, buf, nil, nil)

	err := store.DeleteByID(context.Background(), "task-1", "u1")
	require.NoError(t, err)
	require.Len(t, buf.mutations, 1)
	assert.Equal(t, usecase.OperationDelete, buf.mutations[0].Operation)
	assert.Equal(t, "task-1", buf.mutations[0].ID)
	// The owning partition is unknown at buffer time; replay must scan
	// every partition, so the mutation carries none.
	assert.Empty(t, buf.mutations[0].Partition)
}
