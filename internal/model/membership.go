package model

// Role represents a row in the `roles` table.  System roles ("Admin",
// "Member", "Viewer") are pre-seeded at deployment time and are read-only
// from this service's perspective; the registration workflow fails at
// startup if the Admin system role is missing.
type Role struct {
    ID       uint64 // roles.id
    Name     string // roles.name
    IsSystem bool   // roles.is_system
}

// Membership links an account to a tenant with a role.  A given
// (account, tenant) pair is unique, and the account that registered a
// tenant holds the single membership with IsOwner=true.
type Membership struct {
    ID        uint64 // memberships.id
    AccountID uint64 // memberships.account_id
    TenantID  uint64 // memberships.tenant_id
    RoleID    uint64 // memberships.role_id
    IsOwner   bool   // memberships.is_owner
}
