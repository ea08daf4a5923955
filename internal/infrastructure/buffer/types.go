package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Item is one deferred document write. TargetID is the document's own id;
// ID identifies the buffer entry. An empty Partition means the owning
// partition was unknown at buffering time and the replay has to scan every partition.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	TargetID  string          `json:"target_id"`
	Partition string          `json:"partition"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
