package transport

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type NoteRequest struct {
	Content string `json:"content"`
	Date    string `json:"date"`
}

type HabitRequest struct {
	Title     string `json:"title"`
	Frequency string `json:"frequency"`
}

type HabitToggleRequest struct {
	Date string `json:"date"`
}

type CredentialRequest struct {
	ServiceName     string `json:"service_name"`
	IdentifierType  string `json:"identifier_type"`
	IdentifierValue string `json:"identifier_value"`
	Password        string `json:"password"`
}

// ChatRequest carries one assistant turn. Image is base64, decoded by the
// handler before it reaches the model.
type ChatRequest struct {
	Message   string `json:"message"`
	Image     string `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
}
