package domain

import "time"

// User represents an authenticated identity. PasswordHash is a bcrypt hash
// and never leaves the service.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
