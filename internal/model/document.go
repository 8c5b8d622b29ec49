package model

import "time"

// ActivityDomain and Speciality are admin-managed reference data.  A
// speciality always belongs to one activity domain; the enterprise
// profile update enforces that pairing.
type ActivityDomain struct {
    ID   uint64 // activity_domains.id
    Name string // activity_domains.name
}

type Speciality struct {
    ID               uint64 // specialities.id
    ActivityDomainID uint64 // specialities.activity_domain_id
    Name             string // specialities.name
}

// DocumentCategory classifies tenant documents (admin-managed).
type DocumentCategory struct {
    ID   uint64 // document_categories.id
    Name string // document_categories.name
}

// Document models a file a tenant stored in object storage.  The row keeps
// the public URL and object key; the bytes themselves live in MinIO.
//
// Fields:
//  ID         – primary key identifier.
//  TenantID   – owning tenant.
//  Name       – display name supplied at upload.
//  CategoryID – reference into document_categories.
//  FileURL    – public URL of the stored object.
//  FileKey    – object storage key, needed for deletion.
//  FileSize   – size in bytes.
//  MimeType   – content type as uploaded.
//  UploadedBy – account that performed the upload.
//  CreatedAt  – upload timestamp.
type Document struct {
    ID         uint64    // documents.id
    TenantID   uint64    // documents.tenant_id
    Name       string    // documents.name
    CategoryID uint64    // documents.category_id
    FileURL    string    // documents.file_url
    FileKey    string    // documents.file_key
    FileSize   int64     // documents.file_size
    MimeType   string    // documents.mime_type
    UploadedBy uint64    // documents.uploaded_by
    CreatedAt  time.Time // documents.created_at
}
