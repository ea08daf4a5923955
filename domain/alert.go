package domain

import "time"

// Notification channels. The values double as the persisted "method" field
// of an AlertRecord.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// AlertRecord marks one successfully dispatched reminder. The
// (TaskID, UserID, Method) triple is the de-duplication key: at most one
// record exists per triple, and it is written only after the transport
// confirmed the send. Records are never removed, even when the activity is
// deleted later.
type AlertRecord struct {
	UserID      string    `json:"user_id"`
	TaskID      string    `json:"task_id"`
	Method      string    `json:"method"`
	AlertSentAt time.Time `json:"alert_sent_at"`
}
