package model

import "time"

// Back-office admin roles.  Admin users are seeded at deployment and live
// in their own table, entirely separate from tenant accounts.
const (
    AdminRoleAdmin      = "ADMIN"
    AdminRoleSuperAdmin = "SUPER_ADMIN"
)

// AdminUser models a row in the `admin_users` table.
type AdminUser struct {
    ID           uint64     // admin_users.id
    Email        string     // admin_users.email
    PasswordHash string     // admin_users.password_hash
    Role         string     // admin_users.role
    LastLoginAt  *time.Time // admin_users.last_login_at (nullable)
    CreatedAt    time.Time  // admin_users.created_at
}
