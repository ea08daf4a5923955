package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/repository"
)

func insert(t *testing.T, s *Store, partition, id, userID string, fields map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), partition, &repository.Document{
		ID: id, UserID: userID, Data: data,
	})
	require.NoError(t, err)
}

func TestFindManyFilterSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	insert(t, s, "tasks", "a", "u1", map[string]interface{}{"date": "2026-09-01", "start_time": "09:00"})
	insert(t, s, "tasks", "b", "u1", map[string]interface{}{"date": "2026-09-01", "start_time": "12:00"})
	insert(t, s, "tasks", "c", "u2", map[string]interface{}{"date": "2026-09-01", "start_time": "09:30"})
	insert(t, s, "tasks", "d", "u1", map[string]interface{}{"date": "2026-09-02"})

	ids := func(docs []repository.Document) []string {
		out := make([]string, 0, len(docs))
		for _, doc := range docs {
			out = append(out, doc.ID)
		}
		return out
	}

	docs, err := s.FindMany(ctx, "tasks", repository.Filter{UserID: "u1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "d"}, ids(docs))

	// Empty UserID matches all owners.
	docs, err = s.FindMany(ctx, "tasks", repository.Filter{
		Eq: map[string]string{"date": "2026-09-01"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(docs))

	// Range bounds are inclusive, and a missing field never matches.
	docs, err = s.FindMany(ctx, "tasks", repository.Filter{
		UserID: "u1",
		Gte:    map[string]string{"start_time": "09:00"},
		Lte:    map[string]string{"start_time": "09:30"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, ids(docs))
}

func TestGetOneMissReturnsNil(t *testing.T) {
	s := NewStore()
	doc, err := s.GetOne(context.Background(), "tasks", "nope", "u1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestUpdateOnePatchesPayload(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	insert(t, s, "tasks", "a", "u1", map[string]interface{}{"title": "before", "status": "Pending"})

	matched, err := s.UpdateOne(ctx, "tasks", "a", "u1", map[string]interface{}{"status": "Completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	doc, err := s.GetOne(ctx, "tasks", "a", "u1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(doc.Data, &fields))
	assert.Equal(t, "Completed", fields["status"])
	assert.Equal(t, "before", fields["title"])

	// Wrong owner matches nothing.
	matched, err = s.UpdateOne(ctx, "tasks", "a", "u2", map[string]interface{}{"status": "Pending"})
	require.NoError(t, err)
	assert.Zero(t, matched)
}

func TestDeleteOneScopedByOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	insert(t, s, "tasks", "a", "u1", map[string]interface{}{"title": "mine"})

	deleted, err := s.DeleteOne(ctx, "tasks", "a", "u2")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = s.DeleteOne(ctx, "tasks", "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
