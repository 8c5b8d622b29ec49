package utils // package utils provides helper functions for token creation and hashing

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are encoded in the
// Authorization header when calling protected endpoints.  No refresh
// token exists in this service; clients re-authenticate when the access
// token expires.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a tenant member.  It
// takes the signing secret, the account ID, the email, the tenant the
// session is scoped to, the member's role name within that tenant, and a
// TTL in minutes.  The claims are consumed by the tenant-scoped
// authorization middleware: subject (sub), email, tenant_id, role,
// expiration (exp) and issued at (iat).
func NewAccessToken(secret string, accountID uint64, email string, tenantID uint64, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":       accountID,
        "email":     email,
        "tenant_id": tenantID,
        "role":      role,
        "exp":       exp.Unix(),
        "iat":       time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewAdminToken signs an HS256 JWT for a back-office admin user.  Admin
// tokens carry no tenant claim; they are only accepted by the admin API.
func NewAdminToken(secret string, adminID uint64, email, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   adminID,
        "email": email,
        "role":  role,
        "admin": true,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
