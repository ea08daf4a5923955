package usecase

import (
	"context"
	"encoding/json"
)

// Buffered operation kinds.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// BufferedMutation is one store write held back while primary storage is
// unavailable. Payload carries the full document for a create and the
// field patch for an update; deletes need only the key.
type BufferedMutation struct {
	Operation string          `json:"operation"`
	Partition string          `json:"partition"`
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// OperationBuffer abstracts the offline buffer so the activity store stays
// storage-agnostic.
type OperationBuffer interface {
	Buffer(ctx context.Context, m BufferedMutation) error
}
