package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

// Store is an in-memory DocumentStore. It backs the unit tests and serves
// as a dependency-free stand-in when no Postgres is available. Documents
// keep insertion order within a partition.
type Store struct {
	mu         sync.RWMutex
	partitions map[string][]*repository.Document
}

func NewStore() *Store {
	return &Store{partitions: make(map[string][]*repository.Document)}
}

func (s *Store) Insert(_ context.Context, partition string, doc *repository.Document) (string, error) {
	if doc == nil || partition == "" {
		return "", domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Partition = partition
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if len(stored.Data) == 0 {
		stored.Data = json.RawMessage("{}")
	}
	s.partitions[partition] = append(s.partitions[partition], &stored)

	doc.ID = stored.ID
	doc.CreatedAt = stored.CreatedAt
	doc.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (s *Store) FindMany(_ context.Context, partition string, filter repository.Filter) ([]repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []repository.Document
	for _, doc := range s.partitions[partition] {
		if matches(doc, filter) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *Store) GetOne(_ context.Context, partition, id, userID string) (*repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.partitions[partition] {
		if doc.ID == id && doc.UserID == userID {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateOne(_ context.Context, partition, id, userID string, patch map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.partitions[partition] {
		if doc.ID != id || doc.UserID != userID {
			continue
		}
		fields, err := decode(doc.Data)
		if err != nil {
			return 0, err
		}
		for k, v := range patch {
			fields[k] = v
		}
		merged, err := json.Marshal(fields)
		if err != nil {
			return 0, err
		}
		doc.Data = merged
		doc.UpdatedAt = time.Now()
		return 1, nil
	}
	return 0, nil
}

func (s *Store) DeleteOne(_ context.Context, partition, id, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.partitions[partition]
	for i, doc := range docs {
		if doc.ID == id && doc.UserID == userID {
			s.partitions[partition] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) Count(ctx context.Context, partition string, filter repository.Filter) (int64, error) {
	docs, err := s.FindMany(ctx, partition, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func matches(doc *repository.Document, filter repository.Filter) bool {
	if filter.UserID != "" && doc.UserID != filter.UserID {
		return false
	}
	if len(filter.Eq) == 0 && len(filter.Gte) == 0 && len(filter.Lte) == 0 {
		return true
	}
	fields, err := decode(doc.Data)
	if err != nil {
		return false
	}
	for field, want := range filter.Eq {
		if fieldString(fields, field) != want {
			return false
		}
	}
	for field, bound := range filter.Gte {
		got, ok := fields[field]
		if !ok || fieldText(got) < bound {
			return false
		}
	}
	for field, bound := range filter.Lte {
		got, ok := fields[field]
		if !ok || fieldText(got) > bound {
			return false
		}
	}
	return true
}

func decode(data json.RawMessage) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func fieldString(fields map[string]interface{}, field string) string {
	v, ok := fields[field]
	if !ok {
		return ""
	}
	return fieldText(v)
}

func fieldText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
