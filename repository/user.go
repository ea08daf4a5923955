package repository

import (
	"context"

	"github.com/dhanadurga/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// List returns every registered user; the daily summary job fans out
	// over this.
	List(ctx context.Context) ([]domain.User, error)
}
