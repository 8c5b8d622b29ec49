package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/ila26/platform-api/internal/model"
)

// AdminRepo reads the seeded back-office admin_users table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// GetByEmail fetches an admin user by normalized email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var a model.AdminUser
    var last sql.NullTime
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,email,password_hash,role,last_login_at,created_at FROM admin_users WHERE email=? LIMIT 1",
        email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &last, &a.CreatedAt)
    if err != nil {
        return a, err
    }
    if last.Valid {
        t := last.Time
        a.LastLoginAt = &t
    }
    return a, nil
}

// TouchLastLogin stamps a successful back-office login.
func (r *AdminRepo) TouchLastLogin(ctx context.Context, id uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE admin_users SET last_login_at=NOW() WHERE id=?", id)
    return err
}
