package repository

import "context"

// RoleRepository is the durable set of known role names plus per-account
// assignments.
type RoleRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) error
	Assign(ctx context.Context, accountID, name string) error
	Remove(ctx context.Context, accountID string, names []string) error
	RolesOf(ctx context.Context, accountID string) ([]string, error)
}
