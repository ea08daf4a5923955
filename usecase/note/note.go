package note

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

// Service is CRUD over the notes partition.
type Service struct {
	docs   repository.DocumentStore
	logger *zap.Logger
}

func New(docs repository.DocumentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger}
}

func (s *Service) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note.Content == "" {
		return nil, domain.ErrInvalidPayload
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return nil, err
	}
	if _, err := s.docs.Insert(ctx, repository.PartitionNotes, &repository.Document{
		ID:     note.ID,
		UserID: note.UserID,
		Data:   payload,
	}); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Note, error) {
	docs, err := s.docs.FindMany(ctx, repository.PartitionNotes, repository.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	notes := make([]domain.Note, 0, len(docs))
	for _, doc := range docs {
		var n domain.Note
		if err := json.Unmarshal(doc.Data, &n); err != nil {
			continue
		}
		n.ID = doc.ID
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch map[string]interface{}) error {
	matched, err := s.docs.UpdateOne(ctx, repository.PartitionNotes, id, userID, patch)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.docs.DeleteOne(ctx, repository.PartitionNotes, id, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
