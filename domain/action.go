package domain

// ActionType tags the structured mutations an interpretation can propose.
type ActionType string

const (
	ActionAddTask             ActionType = "add_task"
	ActionUpdateTask          ActionType = "update_task"
	ActionDeleteTask          ActionType = "delete_task"
	ActionSetTimer            ActionType = "set_timer"
	ActionManageCredential    ActionType = "manage_credential"
	ActionDispatchSchedule    ActionType = "dispatch_schedule"
	ActionDispatchCredentials ActionType = "dispatch_credentials"
)

// Credential sub-operations carried by a manage_credential action.
const (
	CredentialOpAdd    = "add"
	CredentialOpUpdate = "update"
	CredentialOpDelete = "delete"
)

// Action is one agent-proposed step. Which fields are meaningful depends on
// Type: add/update carry Data, update/delete address items by TargetTitle,
// dispatch actions carry a Summary, set_timer a Duration, and
// manage_credential an Op plus Data. WhatsAppLink is filled in by the
// backend after a dispatch action is processed so the caller can offer a
// manual send button.
type Action struct {
	Type         ActionType             `json:"type"`
	Data         map[string]interface{} `json:"data,omitempty"`
	TargetTitle  string                 `json:"target_title,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	Duration     string                 `json:"duration,omitempty"`
	Op           string                 `json:"action,omitempty"`
	WhatsAppLink string                 `json:"whatsapp_link,omitempty"`
}

// Interpretation is the validated output of the language model: a
// conversational reply plus an ordered list of proposed actions.
type Interpretation struct {
	Reply   string   `json:"reply"`
	Actions []Action `json:"actions"`
}

// Apply outcomes. Rejected is normal control flow (e.g. a scheduling
// conflict), distinct from a hard failure.
const (
	ApplyApplied  = "applied"
	ApplyRejected = "rejected"
	ApplyFailed   = "failed"
	ApplySkipped  = "skipped"
)

// ApplyResult reports what happened to a single action. Conflicts lists the
// titles of colliding items when Status is ApplyRejected.
type ApplyResult struct {
	Type      ActionType `json:"type"`
	Status    string     `json:"status"`
	Detail    string     `json:"detail,omitempty"`
	Conflicts []string   `json:"conflicts,omitempty"`
}
