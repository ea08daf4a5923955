package domain

// Date and time-of-day values are stored as strings exactly as they appear
// on the wire: dates as "2006-01-02", times as 24h "15:04". Both formats
// compare correctly with plain string ordering, which the scheduling logic
// relies on throughout.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Category decides which partition of the activity store owns an item.
type Category string

const (
	CategoryTask     Category = "Task"
	CategoryWork     Category = "Work"
	CategoryMeeting  Category = "Meeting"
	CategoryRoutine  Category = "Routine"
	CategoryPersonal Category = "Personal"
	CategoryPlan     Category = "Plan"
)

// ParseCategory maps free-form category text onto a known Category.
// Matching is case-insensitive; anything unrecognized (including the empty
// string) falls back to CategoryTask, which owns the default partition.
func ParseCategory(raw string) Category {
	switch normalizeCategory(raw) {
	case "work":
		return CategoryWork
	case "meeting":
		return CategoryMeeting
	case "routine":
		return CategoryRoutine
	case "personal", "personal space":
		return CategoryPersonal
	case "plan":
		return CategoryPlan
	default:
		return CategoryTask
	}
}

func normalizeCategory(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// Activity statuses and priorities.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// DefaultReminderLead is the reminder lead time, in minutes, applied when a
// new activity does not specify one.
const DefaultReminderLead = 10

// Activity is any schedulable item: a task, work shift, meeting, routine
// entry, or trip plan. Exactly one partition owns it at a time, determined
// by Category.
type Activity struct {
	ID           string                 `json:"id,omitempty"`
	UserID       string                 `json:"user_id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Date         string                 `json:"date,omitempty"`
	EndDate      string                 `json:"end_date,omitempty"`
	StartTime    string                 `json:"start_time,omitempty"`
	EndTime      string                 `json:"end_time,omitempty"`
	Priority     string                 `json:"priority,omitempty"`
	Category     Category               `json:"category,omitempty"`
	Status       string                 `json:"status,omitempty"`
	ReminderTime int                    `json:"reminder_time,omitempty"`
	AIGenerated  bool                   `json:"ai_generated,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	Path         string                 `json:"path,omitempty"`
	Remarks      string                 `json:"remarks,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (a *Activity) IsCompleted() bool {
	return a != nil && a.Status == StatusCompleted
}

func (a *Activity) IsPending() bool {
	return a != nil && a.Status == StatusPending
}

// HasInterval reports whether the activity carries both a start and an end
// time and therefore occupies a real slot in the day.
func (a *Activity) HasInterval() bool {
	return a != nil && a.StartTime != "" && a.EndTime != ""
}

// SpanEnd returns the last date of a multi-day activity, falling back to the
// start date for single-day items.
func (a *Activity) SpanEnd() string {
	if a == nil {
		return ""
	}
	if a.EndDate != "" {
		return a.EndDate
	}
	return a.Date
}

// Normalize fills the defaults a freshly created activity is expected to
// carry before it reaches storage.
func (a *Activity) Normalize() {
	if a == nil {
		return
	}
	a.Category = ParseCategory(string(a.Category))
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if a.ReminderTime <= 0 {
		a.ReminderTime = DefaultReminderLead
	}
}
