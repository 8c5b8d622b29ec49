// Package storage wraps the MinIO object store holding tenant uploads
// (logos, cover images, documents).  The database keeps only URLs and
// object keys; the bytes live here.
package storage

import (
    "context"
    "fmt"
    "io"
    "net/url"
    "regexp"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/minio/minio-go/v7"
    "github.com/minio/minio-go/v7/pkg/credentials"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ObjectStore is a thin client over one MinIO bucket.  Keys follow
// <folder>/<tenantID>/<unix-ts>-<uuid>-<sanitized-filename> so tenant
// files never collide and can be listed by prefix.
type ObjectStore struct {
    client   *minio.Client
    bucket   string
    endpoint string
    useSSL   bool
}

// New connects to MinIO.  The bucket must already exist; provisioning is
// a deployment concern.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ObjectStore, error) {
    client, err := minio.New(endpoint, &minio.Options{
        Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
        Secure: useSSL,
    })
    if err != nil {
        return nil, fmt.Errorf("minio client: %w", err)
    }
    return &ObjectStore{client: client, bucket: bucket, endpoint: endpoint, useSSL: useSSL}, nil
}

// UploadInput describes one object to store.
type UploadInput struct {
    Folder      string // logical area: logos, covers, documents
    TenantID    uint64
    Filename    string
    ContentType string
    Size        int64
    Body        io.Reader
}

// ObjectInfo is returned after a successful upload.
type ObjectInfo struct {
    Key string
    URL string
}

// Upload stores one object and returns its key and public URL.
func (s *ObjectStore) Upload(ctx context.Context, in UploadInput) (ObjectInfo, error) {
    key := ObjectKey(in.Folder, in.TenantID, in.Filename)
    _, err := s.client.PutObject(ctx, s.bucket, key, in.Body, in.Size, minio.PutObjectOptions{
        ContentType: in.ContentType,
        UserMetadata: map[string]string{
            "original-name": in.Filename,
            "tenant-id":     strconv.FormatUint(in.TenantID, 10),
        },
    })
    if err != nil {
        return ObjectInfo{}, fmt.Errorf("put object %s: %w", key, err)
    }
    return ObjectInfo{Key: key, URL: s.PublicURL(key)}, nil
}

// Delete removes one object.  Callers log and ignore failures for
// best-effort cleanup of replaced logos and covers.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
    return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PresignedGet returns a time-limited download URL for a stored object.
func (s *ObjectStore) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
    u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
    if err != nil {
        return "", err
    }
    return u.String(), nil
}

// PublicURL builds the unauthenticated URL for a key, assuming the bucket
// policy allows reads (dev setup).  Production would front this with a CDN.
func (s *ObjectStore) PublicURL(key string) string {
    scheme := "http"
    if s.useSSL {
        scheme = "https"
    }
    return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

// KeyFromURL recovers the object key from a public URL produced by
// PublicURL.  Returns "" when the URL does not look like one of ours.
func KeyFromURL(raw string) string {
    u, err := url.Parse(raw)
    if err != nil {
        return ""
    }
    path := strings.TrimPrefix(u.Path, "/")
    _, key, found := strings.Cut(path, "/")
    if !found {
        return ""
    }
    return key
}

// ObjectKey derives the storage key for an upload.  The uuid component
// keeps two same-named uploads in the same second from colliding.
func ObjectKey(folder string, tenantID uint64, filename string) string {
    safe := unsafeChars.ReplaceAllString(filename, "_")
    return fmt.Sprintf("%s/%d/%d-%s-%s",
        folder, tenantID, time.Now().Unix(), uuid.NewString()[:8], safe)
}
