package repository

import (
	"context"
	"database/sql"

	"github.com/ila26/platform-api/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetSystemRole looks up a pre-seeded system role by name.  The
// registration workflow resolves the "Admin" role once at startup and
// treats absence as a fatal deployment error, so this is never on the
// per-request path.
func (r *RoleRepo) GetSystemRole(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,is_system FROM roles WHERE name=? AND is_system=1 LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.IsSystem)
	if err == sql.ErrNoRows {
		return role, ErrRoleNotFound
	}
	return role, err
}
