package credential

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
)

// Vault stores credentials with passwords encrypted at rest and decrypts
// them on the way out.
type Vault struct {
	docs   repository.DocumentStore
	cipher *Cipher
	logger *zap.Logger
}

func New(docs repository.DocumentStore, cipher *Cipher, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{docs: docs, cipher: cipher, logger: logger}
}

func (v *Vault) Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if cred.ServiceName == "" {
		return nil, domain.ErrInvalidPayload
	}
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.Password != "" {
		sealed, err := v.cipher.Encrypt(cred.Password)
		if err != nil {
			return nil, err
		}
		cred.Password = sealed
	}
	payload, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}
	if _, err := v.docs.Insert(ctx, repository.PartitionCredentials, &repository.Document{
		ID:     cred.ID,
		UserID: cred.UserID,
		Data:   payload,
	}); err != nil {
		return nil, err
	}
	return cred, nil
}

// List returns the owner's credentials with passwords decrypted. Entries
// whose ciphertext no longer decrypts are returned with an empty password
// rather than failing the whole listing.
func (v *Vault) List(ctx context.Context, userID string) ([]domain.Credential, error) {
	docs, err := v.docs.FindMany(ctx, repository.PartitionCredentials, repository.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Credential, 0, len(docs))
	for _, doc := range docs {
		var cred domain.Credential
		if err := json.Unmarshal(doc.Data, &cred); err != nil {
			v.logger.Warn("skipping undecodable credential", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		cred.ID = doc.ID
		if cred.Password != "" {
			plain, err := v.cipher.Decrypt(cred.Password)
			if err != nil {
				v.logger.Warn("credential ciphertext did not decrypt", zap.String("id", doc.ID))
				cred.Password = ""
			} else {
				cred.Password = plain
			}
		}
		out = append(out, cred)
	}
	return out, nil
}

func (v *Vault) Update(ctx context.Context, userID, id string, patch map[string]interface{}) error {
	if raw, ok := patch["password"].(string); ok && raw != "" {
		sealed, err := v.cipher.Encrypt(raw)
		if err != nil {
			return err
		}
		patch["password"] = sealed
	}
	matched, err := v.docs.UpdateOne(ctx, repository.PartitionCredentials, id, userID, patch)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

func (v *Vault) Delete(ctx context.Context, userID, id string) error {
	deleted, err := v.docs.DeleteOne(ctx, repository.PartitionCredentials, id, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

// FindByService locates an owner's credential by service name,
// case-insensitively.
func (v *Vault) FindByService(ctx context.Context, userID, service string) (*domain.Credential, error) {
	creds, err := v.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(service))
	for i := range creds {
		if strings.ToLower(strings.TrimSpace(creds[i].ServiceName)) == needle {
			return &creds[i], nil
		}
	}
	return nil, domain.ErrCredentialNotFound
}
