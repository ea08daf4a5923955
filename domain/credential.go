package domain

// Credential is an owner-scoped secret entry. Password holds ciphertext at
// rest; the vault decrypts it transiently for responses and for assembling
// assistant context.
type Credential struct {
	ID              string                 `json:"id,omitempty"`
	UserID          string                 `json:"user_id"`
	ServiceName     string                 `json:"service_name"`
	IdentifierType  string                 `json:"identifier_type"`
	IdentifierValue string                 `json:"identifier_value"`
	Password        string                 `json:"password,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}
