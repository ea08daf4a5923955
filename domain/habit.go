package domain

// Habit is an owner-scoped recurring item. Status maps a date string to a
// completion flag; toggling flips exactly one date's boolean.
type Habit struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Frequency string          `json:"frequency"`
	Status    map[string]bool `json:"status"`
}

// Toggle flips the completion flag for date and returns the new value.
func (h *Habit) Toggle(date string) bool {
	if h.Status == nil {
		h.Status = make(map[string]bool)
	}
	h.Status[date] = !h.Status[date]
	return h.Status[date]
}
