package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/ila26/platform-api/internal/model"
)

// TenantRepo provides CRUD operations for tenants, their subscriptions
// and memberships.  The three entities form one atomic unit at
// registration time, so the create methods take an explicit transaction;
// the caller must commit or roll back.  All timestamp fields are assumed
// to be stored in UTC.
type TenantRepo struct {
    db *sql.DB
}

// NewTenantRepo returns a new TenantRepo bound to the given database.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span this repository and AccountRepo.
func (r *TenantRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new tenant within the scope of an existing
// transaction.  It populates the generated ID and creation date on the
// provided record.  Status should be a valid enumeration value; the
// registration workflow always passes ACTIVE.
func (r *TenantRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Tenant) error {
    const q = `INSERT INTO tenants (name, siret, kbis, owner_id, status, creation_date) VALUES (?, ?, ?, ?, ?, NOW())`
    result, err := tx.ExecContext(ctx, q, t.Name, t.Siret, t.Kbis, t.OwnerID, t.Status)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    // Query back the row to populate the DB-assigned creation date
    return tx.QueryRowContext(ctx,
        `SELECT creation_date FROM tenants WHERE id = ?`, t.ID).Scan(&t.CreationDate)
}

// CreateSubscriptionTx inserts the tenant's subscription row inside the
// registration transaction.
func (r *TenantRepo) CreateSubscriptionTx(ctx context.Context, tx *sql.Tx, s *model.Subscription) error {
    const q = `INSERT INTO subscriptions
        (tenant_id, plan_tier, max_users, status, billing_ref, current_period_start, current_period_end)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        s.TenantID, s.PlanTier, s.MaxUsers, s.Status, s.BillingRef, s.CurrentPeriodStart, s.CurrentPeriodEnd)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// CreateMembershipTx inserts a membership row inside the registration
// transaction.  The unique index on (account_id, tenant_id) enforces the
// one-membership-per-pair invariant.
func (r *TenantRepo) CreateMembershipTx(ctx context.Context, tx *sql.Tx, m *model.Membership) error {
    const q = `INSERT INTO memberships (account_id, tenant_id, role_id, is_owner) VALUES (?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, m.AccountID, m.TenantID, m.RoleID, m.IsOwner)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    m.ID = uint64(id)
    return nil
}

// GetByID fetches a tenant with its profile columns.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (model.Tenant, error) {
    var t model.Tenant
    var addr sql.NullString
    var logo, cover sql.NullString
    var domainID, specID sql.NullInt64
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, siret, kbis, owner_id, status, logo_url, cover_image_url,
                activity_domain_id, speciality_id, address, creation_date
         FROM tenants WHERE id = ? LIMIT 1`, id).
        Scan(&t.ID, &t.Name, &t.Siret, &t.Kbis, &t.OwnerID, &t.Status,
            &logo, &cover, &domainID, &specID, &addr, &t.CreationDate)
    if err != nil {
        return t, err
    }
    if logo.Valid {
        v := logo.String
        t.LogoURL = &v
    }
    if cover.Valid {
        v := cover.String
        t.CoverImageURL = &v
    }
    if domainID.Valid {
        v := uint64(domainID.Int64)
        t.ActivityDomainID = &v
    }
    if specID.Valid {
        v := uint64(specID.Int64)
        t.SpecialityID = &v
    }
    if addr.Valid {
        t.AddressJSON = []byte(addr.String)
    }
    return t, nil
}

// GetSubscription fetches the subscription belonging to a tenant.
func (r *TenantRepo) GetSubscription(ctx context.Context, tenantID uint64) (model.Subscription, error) {
    var s model.Subscription
    err := r.db.QueryRowContext(ctx,
        `SELECT id, tenant_id, plan_tier, max_users, status, billing_ref,
                current_period_start, current_period_end
         FROM subscriptions WHERE tenant_id = ? LIMIT 1`, tenantID).
        Scan(&s.ID, &s.TenantID, &s.PlanTier, &s.MaxUsers, &s.Status, &s.BillingRef,
            &s.CurrentPeriodStart, &s.CurrentPeriodEnd)
    return s, err
}

// TenantProfileUpdate carries the optional fields of a profile update.
// Nil pointers leave the column untouched.  ClearSpeciality forces
// speciality_id to NULL, which happens when the activity domain changes
// without a matching speciality.
type TenantProfileUpdate struct {
    Name             *string
    Siret            *string
    Kbis             *string
    ActivityDomainID *uint64
    SpecialityID     *uint64
    ClearSpeciality  bool
}

// UpdateProfile applies a partial update to the tenant row.  Passing an
// empty update is a no-op.
func (r *TenantRepo) UpdateProfile(ctx context.Context, id uint64, u TenantProfileUpdate) error {
    sets := make([]string, 0, 5)
    args := make([]interface{}, 0, 6)
    if u.Name != nil {
        sets = append(sets, "name=?")
        args = append(args, *u.Name)
    }
    if u.Siret != nil {
        sets = append(sets, "siret=?")
        args = append(args, *u.Siret)
    }
    if u.Kbis != nil {
        sets = append(sets, "kbis=?")
        args = append(args, *u.Kbis)
    }
    if u.ActivityDomainID != nil {
        sets = append(sets, "activity_domain_id=?")
        args = append(args, *u.ActivityDomainID)
    }
    if u.SpecialityID != nil {
        sets = append(sets, "speciality_id=?")
        args = append(args, *u.SpecialityID)
    } else if u.ClearSpeciality {
        sets = append(sets, "speciality_id=NULL")
    }
    if len(sets) == 0 {
        return nil
    }
    args = append(args, id)
    _, err := r.db.ExecContext(ctx,
        "UPDATE tenants SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
    return err
}

// UpdateAddress stores the address JSON blob on the tenant row.
func (r *TenantRepo) UpdateAddress(ctx context.Context, id uint64, addressJSON []byte) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE tenants SET address=? WHERE id=?", addressJSON, id)
    return err
}

// UpdateLogoURL sets or clears the tenant logo URL.
func (r *TenantRepo) UpdateLogoURL(ctx context.Context, id uint64, url *string) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE tenants SET logo_url=? WHERE id=?", url, id)
    return err
}

// UpdateCoverURL sets or clears the tenant cover image URL.
func (r *TenantRepo) UpdateCoverURL(ctx context.Context, id uint64, url *string) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE tenants SET cover_image_url=? WHERE id=?", url, id)
    return err
}

// MembershipInfo is the joined view of a membership used for session
// issuance and tenant-scoped authorization: the tenant, its status, the
// member's role name and whether they own the tenant.
type MembershipInfo struct {
    TenantID     uint64
    TenantName   string
    TenantStatus string
    RoleName     string
    IsOwner      bool
}

// PrimaryMembership selects an account's primary tenant among ACTIVE
// tenants: the owned one when present, otherwise the earliest membership.
// ErrNoActiveTenant is returned when no ACTIVE membership exists.
func (r *TenantRepo) PrimaryMembership(ctx context.Context, accountID uint64) (MembershipInfo, error) {
    var mi MembershipInfo
    err := r.db.QueryRowContext(ctx,
        `SELECT m.tenant_id, t.name, t.status, ro.name, m.is_owner
         FROM memberships m
         JOIN tenants t ON t.id = m.tenant_id
         JOIN roles ro ON ro.id = m.role_id
         WHERE m.account_id = ? AND t.status = ?
         ORDER BY m.is_owner DESC, m.id ASC
         LIMIT 1`, accountID, model.TenantStatusActive).
        Scan(&mi.TenantID, &mi.TenantName, &mi.TenantStatus, &mi.RoleName, &mi.IsOwner)
    if err == sql.ErrNoRows {
        return mi, ErrNoActiveTenant
    }
    return mi, err
}

// MembershipFor resolves the membership of an account in a specific
// tenant.  The tenant-scoped authorization middleware calls this on every
// authenticated request so revoked memberships take effect immediately.
func (r *TenantRepo) MembershipFor(ctx context.Context, accountID, tenantID uint64) (MembershipInfo, error) {
    var mi MembershipInfo
    err := r.db.QueryRowContext(ctx,
        `SELECT m.tenant_id, t.name, t.status, ro.name, m.is_owner
         FROM memberships m
         JOIN tenants t ON t.id = m.tenant_id
         JOIN roles ro ON ro.id = m.role_id
         WHERE m.account_id = ? AND m.tenant_id = ?
         LIMIT 1`, accountID, tenantID).
        Scan(&mi.TenantID, &mi.TenantName, &mi.TenantStatus, &mi.RoleName, &mi.IsOwner)
    return mi, err
}

// ListMemberships returns every tenant the account belongs to, owners
// first, for the tenant-picker endpoint.
func (r *TenantRepo) ListMemberships(ctx context.Context, accountID uint64) ([]MembershipInfo, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT m.tenant_id, t.name, t.status, ro.name, m.is_owner
         FROM memberships m
         JOIN tenants t ON t.id = m.tenant_id
         JOIN roles ro ON ro.id = m.role_id
         WHERE m.account_id = ?
         ORDER BY m.is_owner DESC, m.id ASC`, accountID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []MembershipInfo
    for rows.Next() {
        var mi MembershipInfo
        if err := rows.Scan(&mi.TenantID, &mi.TenantName, &mi.TenantStatus, &mi.RoleName, &mi.IsOwner); err != nil {
            return nil, err
        }
        out = append(out, mi)
    }
    return out, rows.Err()
}
