package repository

import (
	"context"
	"encoding/json"

	"github.com/dhanadurga/backend/domain"
)

// AlertLog records dispatched reminders. AlreadySent and Record are not one
// atomic step; the dispatcher relies on a single active poller to keep the
// (task, user, method) key unique.
type AlertLog interface {
	AlreadySent(ctx context.Context, userID, taskID, method string) (bool, error)
	Record(ctx context.Context, rec domain.AlertRecord) error
}

type alertLog struct {
	docs DocumentStore
}

// NewAlertLog stores alert records in the shared alerts_log partition.
func NewAlertLog(docs DocumentStore) AlertLog {
	return &alertLog{docs: docs}
}

func (l *alertLog) AlreadySent(ctx context.Context, userID, taskID, method string) (bool, error) {
	count, err := l.docs.Count(ctx, PartitionAlertsLog, Filter{
		UserID: userID,
		Eq: map[string]string{
			"task_id": taskID,
			"method":  method,
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *alertLog) Record(ctx context.Context, rec domain.AlertRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = l.docs.Insert(ctx, PartitionAlertsLog, &Document{
		UserID: rec.UserID,
		Data:   payload,
	})
	return err
}
