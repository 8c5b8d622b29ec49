package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/ila26/platform-api/internal/model"
)

type DocumentRepo struct{ db *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

// Create inserts a document row after the file landed in object storage
// and returns the generated ID.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO documents (tenant_id, name, category_id, file_url, file_key, file_size, mime_type, uploaded_by)
         VALUES (?,?,?,?,?,?,?,?)`,
        d.TenantID, d.Name, d.CategoryID, d.FileURL, d.FileKey, d.FileSize, d.MimeType, d.UploadedBy)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    d.ID = uint64(id)
    return nil
}

// DocumentDetail is the listing view: the document joined with its
// category and the uploader's identity.
type DocumentDetail struct {
    ID            uint64    `json:"id"`
    Name          string    `json:"name"`
    FileURL       string    `json:"url"`
    FileSize      int64     `json:"size"`
    MimeType      string    `json:"mime_type"`
    CategoryID    uint64    `json:"category_id"`
    CategoryName  string    `json:"category_name"`
    UploaderID    uint64    `json:"uploaded_by"`
    UploaderName  string    `json:"uploader_name"`
    UploaderEmail string    `json:"uploader_email"`
    CreatedAt     time.Time `json:"created_at"`
}

// ListByTenant returns a tenant's documents newest first.
func (r *DocumentRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]DocumentDetail, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT d.id, d.name, d.file_url, d.file_size, d.mime_type,
                c.id, c.name, a.id, a.full_name, a.email, d.created_at
         FROM documents d
         JOIN document_categories c ON c.id = d.category_id
         JOIN accounts a ON a.id = d.uploaded_by
         WHERE d.tenant_id = ?
         ORDER BY d.created_at DESC`, tenantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []DocumentDetail
    for rows.Next() {
        var dd DocumentDetail
        if err := rows.Scan(&dd.ID, &dd.Name, &dd.FileURL, &dd.FileSize, &dd.MimeType,
            &dd.CategoryID, &dd.CategoryName, &dd.UploaderID, &dd.UploaderName, &dd.UploaderEmail,
            &dd.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, dd)
    }
    return out, rows.Err()
}

// GetForTenant fetches a document only when it belongs to the tenant, so
// one tenant can never address another tenant's files.
func (r *DocumentRepo) GetForTenant(ctx context.Context, tenantID, documentID uint64) (model.Document, error) {
    var d model.Document
    err := r.db.QueryRowContext(ctx,
        `SELECT id, tenant_id, name, category_id, file_url, file_key, file_size, mime_type, uploaded_by, created_at
         FROM documents WHERE id = ? AND tenant_id = ? LIMIT 1`, documentID, tenantID).
        Scan(&d.ID, &d.TenantID, &d.Name, &d.CategoryID, &d.FileURL, &d.FileKey, &d.FileSize,
            &d.MimeType, &d.UploadedBy, &d.CreatedAt)
    return d, err
}

// Delete removes a document row.
func (r *DocumentRepo) Delete(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id=?", id)
    return err
}
