package repository

import (
    "context"
    "database/sql"

    "github.com/ila26/platform-api/internal/model"
)

// ReferenceRepo reads the admin-managed reference tables: activity
// domains, specialities and document categories.  This service never
// writes them.
type ReferenceRepo struct{ db *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{db: db} }

// ActivityDomains lists all activity domains ordered by name.
func (r *ReferenceRepo) ActivityDomains(ctx context.Context) ([]model.ActivityDomain, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, name FROM activity_domains ORDER BY name ASC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.ActivityDomain
    for rows.Next() {
        var d model.ActivityDomain
        if err := rows.Scan(&d.ID, &d.Name); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// GetActivityDomain fetches one activity domain by id.
func (r *ReferenceRepo) GetActivityDomain(ctx context.Context, id uint64) (model.ActivityDomain, error) {
    var d model.ActivityDomain
    err := r.db.QueryRowContext(ctx,
        "SELECT id, name FROM activity_domains WHERE id=? LIMIT 1", id).Scan(&d.ID, &d.Name)
    return d, err
}

// SpecialitiesByDomain lists specialities belonging to an activity domain.
func (r *ReferenceRepo) SpecialitiesByDomain(ctx context.Context, domainID uint64) ([]model.Speciality, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, activity_domain_id, name FROM specialities WHERE activity_domain_id=? ORDER BY name ASC", domainID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Speciality
    for rows.Next() {
        var s model.Speciality
        if err := rows.Scan(&s.ID, &s.ActivityDomainID, &s.Name); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// GetSpeciality fetches one speciality by id.
func (r *ReferenceRepo) GetSpeciality(ctx context.Context, id uint64) (model.Speciality, error) {
    var s model.Speciality
    err := r.db.QueryRowContext(ctx,
        "SELECT id, activity_domain_id, name FROM specialities WHERE id=? LIMIT 1", id).
        Scan(&s.ID, &s.ActivityDomainID, &s.Name)
    return s, err
}

// DocumentCategories lists all document categories ordered by name.
func (r *ReferenceRepo) DocumentCategories(ctx context.Context) ([]model.DocumentCategory, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, name FROM document_categories ORDER BY name ASC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.DocumentCategory
    for rows.Next() {
        var c model.DocumentCategory
        if err := rows.Scan(&c.ID, &c.Name); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

// GetDocumentCategory fetches one document category by id.
func (r *ReferenceRepo) GetDocumentCategory(ctx context.Context, id uint64) (model.DocumentCategory, error) {
    var c model.DocumentCategory
    err := r.db.QueryRowContext(ctx,
        "SELECT id, name FROM document_categories WHERE id=? LIMIT 1", id).Scan(&c.ID, &c.Name)
    return c, err
}
