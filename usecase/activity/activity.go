package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/usecase"
)

// Store presents the category-partitioned activity collections as one
// logical temporal store. Writes are routed by category; reads, updates and
// deletes fan out across partitions when the category is unknown. There is
// no caching layer: every successful write is visible to the next read.
type Store struct {
	docs   repository.DocumentStore
	buffer usecase.OperationBuffer
	clock  clock.Clock
	logger *zap.Logger
}

func New(docs repository.DocumentStore, buffer usecase.OperationBuffer, clk clock.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{
		docs:   docs,
		buffer: buffer,
		clock:  clk,
		logger: logger,
	}
}

// PartitionFor resolves the partition owning a category. Unrecognized
// categories already collapse to CategoryTask in ParseCategory, so the
// default here is the tasks partition.
func PartitionFor(c domain.Category) string {
	switch c {
	case domain.CategoryWork:
		return repository.PartitionWork
	case domain.CategoryMeeting:
		return repository.PartitionMeetings
	case domain.CategoryRoutine:
		return repository.PartitionRoutines
	case domain.CategoryPersonal:
		return repository.PartitionPersonal
	case domain.CategoryPlan:
		return repository.PartitionPlans
	default:
		return repository.PartitionTasks
	}
}

// Query narrows a FindMany. An empty Category searches every partition.
type Query struct {
	Category string
	Date     string
	Status   string
	// Period is "today" or "weekly" and overrides Date when set.
	Period string
	// DateFrom/DateTo select an inclusive date range when both are set.
	DateFrom string
	DateTo   string
}

func (s *Store) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	if a == nil || a.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	a.Normalize()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	partition := PartitionFor(a.Category)

	payload, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	doc := &repository.Document{ID: a.ID, UserID: a.UserID, Data: payload}
	if _, err := s.docs.Insert(ctx, partition, doc); err != nil {
		if s.bufferWrite(ctx, usecase.BufferedMutation{
			Operation: usecase.OperationCreate,
			Partition: partition,
			ID:        a.ID,
			UserID:    a.UserID,
			Payload:   payload,
		}) {
			return a, nil
		}
		return nil, err
	}
	return a, nil
}

func (s *Store) FindMany(ctx context.Context, userID string, q Query) ([]domain.Activity, error) {
	filter := s.buildFilter(userID, q)

	partitions := repository.ActivityPartitions
	if q.Category != "" {
		partitions = []string{PartitionFor(domain.ParseCategory(q.Category))}
	}

	var out []domain.Activity
	for _, partition := range partitions {
		docs, err := s.docs.FindMany(ctx, partition, filter)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			a, err := decodeActivity(&docs[i])
			if err != nil {
				s.logger.Warn("skipping undecodable activity",
					zap.String("partition", partition),
					zap.String("id", docs[i].ID),
					zap.Error(err))
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// ForDate returns every activity of the owner on one date, across all
// partitions. The conflict engine and the reminder dispatcher read through
// this.
func (s *Store) ForDate(ctx context.Context, userID, date string) ([]domain.Activity, error) {
	return s.FindMany(ctx, userID, Query{Date: date})
}

// InRange returns activities whose start date falls inside [from, to],
// restricted to the given partitions (all activity partitions when nil).
func (s *Store) InRange(ctx context.Context, userID, from, to string, partitions []string) ([]domain.Activity, error) {
	if partitions == nil {
		partitions = repository.ActivityPartitions
	}
	filter := repository.Filter{
		UserID: userID,
		Gte:    map[string]string{"date": from},
		Lte:    map[string]string{"date": to},
	}
	var out []domain.Activity
	for _, partition := range partitions {
		docs, err := s.docs.FindMany(ctx, partition, filter)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			a, err := decodeActivity(&docs[i])
			if err != nil {
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// Matching scans every activity partition with a raw filter. An empty
// filter UserID matches all owners; the reminder engine uses this for its
// cross-user polls.
func (s *Store) Matching(ctx context.Context, filter repository.Filter) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, partition := range repository.ActivityPartitions {
		docs, err := s.docs.FindMany(ctx, partition, filter)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			a, err := decodeActivity(&docs[i])
			if err != nil {
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// GetByID scans the activity partitions in their fixed order and returns
// the first match along with its owning partition.
func (s *Store) GetByID(ctx context.Context, id, userID string) (*domain.Activity, string, error) {
	for _, partition := range repository.ActivityPartitions {
		doc, err := s.docs.GetOne(ctx, partition, id, userID)
		if err != nil {
			return nil, "", err
		}
		if doc == nil {
			continue
		}
		a, err := decodeActivity(doc)
		if err != nil {
			return nil, "", err
		}
		return &a, partition, nil
	}
	return nil, "", domain.ErrActivityNotFound
}

// UpdateByID patches an activity located by probing partitions in the
// fixed order. When the patch changes the category to one owned by a
// different partition, the document moves: it is rewritten into the target
// partition under the same id and removed from the old one.
func (s *Store) UpdateByID(ctx context.Context, id, userID string, patch map[string]interface{}) (*domain.Activity, error) {
	if len(patch) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	current, partition, err := s.GetByID(ctx, id, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		if payload, mErr := json.Marshal(patch); mErr == nil && s.bufferWrite(ctx, usecase.BufferedMutation{
			Operation: usecase.OperationUpdate,
			Partition: "",
			ID:        id,
			UserID:    userID,
			Payload:   payload,
		}) {
			return nil, nil
		}
		return nil, err
	}

	target := partition
	if raw, ok := patch["category"]; ok {
		if cat, ok := raw.(string); ok {
			target = PartitionFor(domain.ParseCategory(cat))
		}
	}

	if target != partition {
		return s.move(ctx, current, partition, target, patch)
	}

	matched, err := s.docs.UpdateOne(ctx, partition, id, userID, patch)
	if err != nil {
		return nil, err
	}
	if matched == 0 {
		return nil, domain.ErrActivityNotFound
	}
	doc, err := s.docs.GetOne(ctx, partition, id, userID)
	if err != nil || doc == nil {
		return nil, err
	}
	updated, err := decodeActivity(doc)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteByID scans partitions in the fixed order and removes the first
// match.
func (s *Store) DeleteByID(ctx context.Context, id, userID string) error {
	for _, partition := range repository.ActivityPartitions {
		deleted, err := s.docs.DeleteOne(ctx, partition, id, userID)
		if err != nil {
			// The owning partition is unknown while the store is down, so
			// the buffered delete carries no partition and replay scans
			// them all.
			if s.bufferWrite(ctx, usecase.BufferedMutation{
				Operation: usecase.OperationDelete,
				Partition: "",
				ID:        id,
				UserID:    userID,
			}) {
				return nil
			}
			return err
		}
		if deleted > 0 {
			return nil
		}
	}
	return domain.ErrActivityNotFound
}

func (s *Store) move(ctx context.Context, current *domain.Activity, from, to string, patch map[string]interface{}) (*domain.Activity, error) {
	merged, err := applyPatch(current, patch)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	doc := &repository.Document{ID: merged.ID, UserID: merged.UserID, Data: payload}
	if _, err := s.docs.Insert(ctx, to, doc); err != nil {
		return nil, err
	}
	if _, err := s.docs.DeleteOne(ctx, from, merged.ID, merged.UserID); err != nil {
		s.logger.Error("category move left a stale copy behind",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("id", merged.ID),
			zap.Error(err))
		return nil, err
	}
	return merged, nil
}

func (s *Store) buildFilter(userID string, q Query) repository.Filter {
	filter := repository.Filter{UserID: userID}
	eq := map[string]string{}

	switch q.Period {
	case "today":
		eq["date"] = s.clock.Now().Format(domain.DateLayout)
	case "weekly":
		now := s.clock.Now()
		filter.Gte = map[string]string{"date": now.Format(domain.DateLayout)}
		filter.Lte = map[string]string{"date": now.Add(7 * 24 * time.Hour).Format(domain.DateLayout)}
	default:
		if q.Date != "" {
			eq["date"] = q.Date
		}
		if q.DateFrom != "" && q.DateTo != "" {
			filter.Gte = map[string]string{"date": q.DateFrom}
			filter.Lte = map[string]string{"date": q.DateTo}
		}
	}
	if q.Status != "" {
		eq["status"] = q.Status
	}
	if len(eq) > 0 {
		filter.Eq = eq
	}
	return filter
}

func (s *Store) bufferWrite(ctx context.Context, m usecase.BufferedMutation) bool {
	if s.buffer == nil {
		return false
	}
	if err := s.buffer.Buffer(ctx, m); err != nil {
		s.logger.Error("failed to buffer activity mutation",
			zap.String("operation", m.Operation),
			zap.Error(err))
		return false
	}
	s.logger.Warn("activity mutation buffered",
		zap.String("operation", m.Operation),
		zap.String("partition", m.Partition))
	return true
}

func decodeActivity(doc *repository.Document) (domain.Activity, error) {
	var a domain.Activity
	if err := json.Unmarshal(doc.Data, &a); err != nil {
		return domain.Activity{}, err
	}
	a.ID = doc.ID
	if a.UserID == "" {
		a.UserID = doc.UserID
	}
	return a, nil
}

// applyPatch merges a field patch into a copy of the activity by a marshal
// round trip, so patch keys use the same wire names as storage.
func applyPatch(current *domain.Activity, patch map[string]interface{}) (*domain.Activity, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var out domain.Activity
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, err
	}
	out.Category = domain.ParseCategory(string(out.Category))
	return &out, nil
}
