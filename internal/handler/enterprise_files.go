package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/model"
    "github.com/ila26/platform-api/internal/repository"
    "github.com/ila26/platform-api/internal/storage"
)

// Upload limits per area.  Logos stay small, covers may be larger,
// documents larger still.
const (
    maxLogoSize     = 2 * 1024 * 1024
    maxCoverSize    = 5 * 1024 * 1024
    maxDocumentSize = 10 * 1024 * 1024
)

var allowedImageTypes = map[string]bool{
    "image/jpeg": true,
    "image/jpg":  true,
    "image/png":  true,
    "image/webp": true,
}

// FilesHandler serves tenant media (logo, cover) and document uploads.
// Store may be nil when MinIO is not configured; every route then
// answers 503 rather than accepting bytes it cannot persist.
type FilesHandler struct {
    Tenants *repository.TenantRepo
    Docs    *repository.DocumentRepo
    Refs    *repository.ReferenceRepo
    Store   *storage.ObjectStore
}

func NewFilesHandler(tenants *repository.TenantRepo, docs *repository.DocumentRepo,
    refs *repository.ReferenceRepo, store *storage.ObjectStore) *FilesHandler {
    return &FilesHandler{Tenants: tenants, Docs: docs, Refs: refs, Store: store}
}

func (h *FilesHandler) storeReady(c echo.Context) bool {
    if h.Store == nil {
        _ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "object storage not configured"})
        return false
    }
    return true
}

// uploadMedia implements the shared logo/cover path: validate, upload,
// best-effort delete of the replaced object, persist the new URL.
func (h *FilesHandler) uploadMedia(c echo.Context, folder string, maxSize int64,
    currentURL func(model.Tenant) *string,
    saveURL func(ctx context.Context, id uint64, url *string) error) error {

    if !h.storeReady(c) {
        return nil
    }
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
    }
    contentType := fh.Header.Get("Content-Type")
    if !allowedImageTypes[contentType] {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file type: only JPEG, PNG and WebP images are allowed"})
    }
    if fh.Size > maxSize {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file size exceeds limit"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    t, err := h.Tenants.GetByID(ctx, tid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
    }
    defer src.Close()

    obj, err := h.Store.Upload(ctx, storage.UploadInput{
        Folder:      folder,
        TenantID:    tid,
        Filename:    fh.Filename,
        ContentType: contentType,
        Size:        fh.Size,
        Body:        src,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
    }

    // Replace-then-delete: the old object is removed only after the new
    // one landed, and a failed delete just leaves an orphan behind.
    if old := currentURL(t); old != nil {
        if key := storage.KeyFromURL(*old); key != "" {
            if err := h.Store.Delete(ctx, key); err != nil {
                c.Logger().Warnf("delete old %s object %s failed: %v", folder, key, err)
            }
        }
    }

    if err := saveURL(ctx, tid, &obj.URL); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"url": obj.URL, "key": obj.Key})
}

// deleteMedia implements the shared logo/cover removal path.
func (h *FilesHandler) deleteMedia(c echo.Context, folder string,
    currentURL func(model.Tenant) *string,
    saveURL func(ctx context.Context, id uint64, url *string) error) error {

    if !h.storeReady(c) {
        return nil
    }
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    t, err := h.Tenants.GetByID(ctx, tid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    if old := currentURL(t); old != nil {
        if key := storage.KeyFromURL(*old); key != "" {
            if err := h.Store.Delete(ctx, key); err != nil {
                c.Logger().Warnf("delete %s object %s failed: %v", folder, key, err)
            }
        }
    }
    if err := saveURL(ctx, tid, nil); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UploadLogo stores a tenant logo (images only, 2MB max).
func (h *FilesHandler) UploadLogo(c echo.Context) error {
    return h.uploadMedia(c, "logos", maxLogoSize,
        func(t model.Tenant) *string { return t.LogoURL },
        h.Tenants.UpdateLogoURL)
}

// DeleteLogo removes the tenant logo.
func (h *FilesHandler) DeleteLogo(c echo.Context) error {
    return h.deleteMedia(c, "logos",
        func(t model.Tenant) *string { return t.LogoURL },
        h.Tenants.UpdateLogoURL)
}

// UploadCover stores a tenant cover image (images only, 5MB max).
func (h *FilesHandler) UploadCover(c echo.Context) error {
    return h.uploadMedia(c, "covers", maxCoverSize,
        func(t model.Tenant) *string { return t.CoverImageURL },
        h.Tenants.UpdateCoverURL)
}

// DeleteCover removes the tenant cover image.
func (h *FilesHandler) DeleteCover(c echo.Context) error {
    return h.deleteMedia(c, "covers",
        func(t model.Tenant) *string { return t.CoverImageURL },
        h.Tenants.UpdateCoverURL)
}

// UploadDocument stores a categorized tenant document (10MB max, any
// content type) and records it in the documents table.
func (h *FilesHandler) UploadDocument(c echo.Context) error {
    if !h.storeReady(c) {
        return nil
    }
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    uid, ok := accountID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    name := c.FormValue("name")
    categoryID, err := strconv.ParseUint(c.FormValue("category_id"), 10, 64)
    if name == "" || err != nil || categoryID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and category_id required"})
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
    }
    if fh.Size > maxDocumentSize {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file size exceeds limit"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    category, err := h.Refs.GetDocumentCategory(ctx, categoryID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document category not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
    }
    defer src.Close()

    contentType := fh.Header.Get("Content-Type")
    obj, err := h.Store.Upload(ctx, storage.UploadInput{
        Folder:      "documents",
        TenantID:    tid,
        Filename:    fh.Filename,
        ContentType: contentType,
        Size:        fh.Size,
        Body:        src,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
    }

    doc := model.Document{
        TenantID:   tid,
        Name:       name,
        CategoryID: category.ID,
        FileURL:    obj.URL,
        FileKey:    obj.Key,
        FileSize:   fh.Size,
        MimeType:   contentType,
        UploadedBy: uid,
    }
    if err := h.Docs.Create(ctx, &doc); err != nil {
        // The row failed after the object landed; drop the orphan.
        if derr := h.Store.Delete(ctx, obj.Key); derr != nil {
            c.Logger().Warnf("orphan cleanup of %s failed: %v", obj.Key, derr)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create document failed"})
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "id":        doc.ID,
        "name":      doc.Name,
        "url":       doc.FileURL,
        "size":      doc.FileSize,
        "mime_type": doc.MimeType,
        "category":  echo.Map{"id": category.ID, "name": category.Name},
    })
}

// ListDocuments returns the tenant's documents newest first.
func (h *FilesHandler) ListDocuments(c echo.Context) error {
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    docs, err := h.Docs.ListByTenant(ctx, tid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"documents": docs})
}

// DeleteDocument removes a document row and its stored object.  A
// document belonging to another tenant is indistinguishable from a
// missing one.
func (h *FilesHandler) DeleteDocument(c echo.Context) error {
    if !h.storeReady(c) {
        return nil
    }
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || docID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    doc, err := h.Docs.GetForTenant(ctx, tid, docID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    if err := h.Store.Delete(ctx, doc.FileKey); err != nil {
        c.Logger().Warnf("delete document object %s failed: %v", doc.FileKey, err)
    }
    if err := h.Docs.Delete(ctx, doc.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DocumentCategories lists the admin-managed document categories.
func (h *FilesHandler) DocumentCategories(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cats, err := h.Refs.DocumentCategories(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}
