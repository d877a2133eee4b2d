package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)
	`, name).Scan(&exists)
	return exists, err
}

func (r *RoleRepository) Create(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO roles (name) VALUES ($1)`, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *RoleRepository) Assign(ctx context.Context, accountID, name string) error {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO account_roles (account_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (account_id, role_id) DO NOTHING
	`, accountID, name)
	if err != nil {
		return err
	}
	// Zero inserts with no conflict means the role name did not resolve.
	if res.RowsAffected() == 0 {
		exists, eErr := r.Exists(ctx, name)
		if eErr != nil {
			return eErr
		}
		if !exists {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (r *RoleRepository) Remove(ctx context.Context, accountID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM account_roles
		WHERE account_id = $1
		  AND role_id IN (SELECT id FROM roles WHERE name = ANY($2))
	`, accountID, names)
	return err
}

func (r *RoleRepository) RolesOf(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name
		FROM account_roles ar
		JOIN roles r ON r.id = ar.role_id
		WHERE ar.account_id = $1
		ORDER BY ar.assigned_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0, 1)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
