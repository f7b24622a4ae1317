package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neomnia/content-mania-sub004/pkg/rbac"
)

// RoleRepository is the roles lookup keyed by identity. Role assignments
// are re-queried on every check; nothing is cached across requests, so a
// revoked elevation never outlives the request that revoked it.
type RoleRepository struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListRoles returns the role set assigned to a user. Unknown role names in
// storage are dropped rather than failing the lookup.
func (r *RoleRepository) ListRoles(ctx context.Context, userID int) (rbac.RoleSet, error) {
	query := `
        SELECT role
        FROM user_roles
        WHERE user_id = $1
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var set rbac.RoleSet
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if role := rbac.Parse(name); role != rbac.RoleInvalid {
			set = append(set, role)
		}
	}
	return set, rows.Err()
}

// AssignRole grants a role to a user. Idempotent on conflict.
func (r *RoleRepository) AssignRole(ctx context.Context, userID int, role rbac.Role) error {
	query := `
        INSERT INTO user_roles (user_id, role, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, role) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID, role.String())
	return err
}

// RevokeRole removes a role assignment.
func (r *RoleRepository) RevokeRole(ctx context.Context, userID int, role rbac.Role) error {
	query := `
        DELETE FROM user_roles
        WHERE user_id = $1 AND role = $2
    `
	_, err := r.db.Exec(ctx, query, userID, role.String())
	return err
}
