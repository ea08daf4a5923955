package domain

// Note is a free-form dated note.
type Note struct {
	ID      string `json:"id,omitempty"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Date    string `json:"date"`
}
