package repository

import (
	"context"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/entity"
)

// AccountRepository defines the durable mapping from account identity to
// account record. Email uniqueness is case-insensitive and enforced by the
// store, not by callers.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	Delete(ctx context.Context, id string) error
}
