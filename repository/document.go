package repository

import (
	"context"
	"encoding/json"
	"time"
)

// Partition names. One partition per activity category plus the auxiliary
// collections. The activity partitions are scanned in ActivityPartitions
// order whenever an id has to be located without a known category; the
// order is fixed purely so the scan is deterministic (ids are globally
// unique, so it cannot change the outcome, only the cost).
const (
	PartitionTasks       = "tasks"
	PartitionWork        = "work"
	PartitionMeetings    = "meetings"
	PartitionRoutines    = "routines"
	PartitionPersonal    = "personal"
	PartitionPlans       = "plans"
	PartitionNotes       = "notes"
	PartitionHabits      = "habits"
	PartitionCredentials = "credentials"
	PartitionAlertsLog   = "alerts_log"
)

// ActivityPartitions is the deterministic scan order for category-less
// lookups and the fan-out order for cross-partition reads.
var ActivityPartitions = []string{
	PartitionTasks,
	PartitionWork,
	PartitionMeetings,
	PartitionRoutines,
	PartitionPersonal,
	PartitionPlans,
}

// Document is one stored record: an opaque JSON payload scoped to a
// partition and an owner.
type Document struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Partition string          `json:"partition"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Filter selects documents by owner plus simple predicates on payload
// fields. Eq matches exact string values; Gte/Lte are inclusive range
// bounds compared as strings (dates and HH:MM times order correctly that
// way). A zero Filter matches everything in the partition.
type Filter struct {
	UserID string
	Eq     map[string]string
	Gte    map[string]string
	Lte    map[string]string
}

// DocumentStore is the generic persistence capability the scheduling core
// is written against. Implementations must preserve insertion order within
// a partition for FindMany.
type DocumentStore interface {
	Insert(ctx context.Context, partition string, doc *Document) (string, error)
	FindMany(ctx context.Context, partition string, filter Filter) ([]Document, error)
	// UpdateOne merges patch into the payload of the matching document and
	// returns the matched count (0 or 1).
	UpdateOne(ctx context.Context, partition, id, userID string, patch map[string]interface{}) (int64, error)
	// DeleteOne returns the deleted count (0 or 1).
	DeleteOne(ctx context.Context, partition, id, userID string) (int64, error)
	Count(ctx context.Context, partition string, filter Filter) (int64, error)
	// GetOne fetches a single document by id and owner.
	GetOne(ctx context.Context, partition, id, userID string) (*Document, error)
}
