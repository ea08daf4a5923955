package habit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

// Service is CRUD over the habits partition plus per-date toggling.
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

func (s *Service) Create(ctx context.Context, habit *domain.Habit) (*domain.Habit, error) {
	if habit.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	if habit.Status == nil {
		habit.Status = make(map[string]bool)
	}
	payload, err := json.Marshal(habit)
	if err != nil {
		return nil, err
	}
	if _, err := s.docs.Insert(ctx, repository.PartitionHabits, &repository.Document{
		ID:     habit.ID,
		UserID: habit.UserID,
		Data:   payload,
	}); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Habit, error) {
	docs, err := s.docs.FindMany(ctx, repository.PartitionHabits, repository.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	habits := make([]domain.Habit, 0, len(docs))
	for _, doc := range docs {
		var h domain.Habit
		if err := json.Unmarshal(doc.Data, &h); err != nil {
			continue
		}
		h.ID = doc.ID
		habits = append(habits, h)
	}
	return habits, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (*domain.Habit, error) {
	doc, err := s.docs.GetOne(ctx, repository.PartitionHabits, id, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrHabitNotFound
	}
	var h domain.Habit
	if err := json.Unmarshal(doc.Data, &h); err != nil {
		return nil, err
	}
	h.ID = doc.ID
	return &h, nil
}

// Toggle flips the habit's completion flag for date and persists the
// whole status map. It returns the new flag value.
func (s *Service) Toggle(ctx context.Context, userID, id, date string) (bool, error) {
	habit, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return false, err
	}
	done := habit.Toggle(date)
	patch := map[string]interface{}{"status": habit.Status}
	if _, err := s.docs.UpdateOne(ctx, repository.PartitionHabits, id, userID, patch); err != nil {
		return false, err
	}
	return done, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch map[string]interface{}) error {
	matched, err := s.docs.UpdateOne(ctx, repository.PartitionHabits, id, userID, patch)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.docs.DeleteOne(ctx, repository.PartitionHabits, id, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}
