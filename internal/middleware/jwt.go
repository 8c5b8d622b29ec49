package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // request-scoped deadlines for the membership lookup
    "net/http" // HTTP status codes for responses
    "strconv"  // numeric claim parsing
    "strings"  // string utilities for prefix checking and trimming
    "time"     // timeout duration for the membership lookup

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/ila26/platform-api/internal/repository"
)

// MembershipResolver resolves the live membership behind a token's
// (account, tenant) claim pair.  *repository.TenantRepo satisfies it.
type MembershipResolver interface {
    MembershipFor(ctx context.Context, accountID, tenantID uint64) (repository.MembershipInfo, error)
}

// TenantAuth returns an Echo middleware that validates a Bearer access
// token and resolves its claims back to an active membership record.  The
// token alone is not trusted as the permission context: the membership is
// re-read from the database on every request, so a membership removed
// after token issuance locks the holder out immediately.  On success the
// middleware injects into the request context:
//   "account_id" (uint64), "email" (string),
//   "tenant_id" (uint64), "role" (string).
func TenantAuth(secret string, memberships MembershipResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse the token using the HS256 signing method and our
            // secret.  Tokens signed with a different algorithm are
            // rejected outright.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            accountID, okSub := numericClaim(claims, "sub")
            tenantID, okTen := numericClaim(claims, "tenant_id")
            if !okSub || !okTen || accountID == 0 || tenantID == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            email, _ := claims["email"].(string)

            // Resolve the membership the token claims to act under.  A
            // missing row means the account or its membership is gone.
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            mi, err := memberships.MembershipFor(ctx, accountID, tenantID)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no tenant membership"})
            }

            c.Set("account_id", accountID)
            c.Set("email", email)
            c.Set("tenant_id", tenantID)
            c.Set("role", mi.RoleName)
            return next(c)
        }
    }
}

// AdminAuth validates a back-office token.  Admin tokens are marked with
// an "admin": true claim and never carry a tenant.
func AdminAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            if isAdmin, _ := claims["admin"].(bool); !isAdmin {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            adminID, okSub := numericClaim(claims, "sub")
            if !okSub || adminID == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            c.Set("admin_id", adminID)
            if email, ok := claims["email"].(string); ok {
                c.Set("email", email)
            }
            c.Set("role", claims["role"])
            return next(c)
        }
    }
}

// numericClaim extracts a uint64 claim.  JWT numeric values decode as
// float64; string-encoded numbers are tolerated for interoperability.
func numericClaim(claims jwt.MapClaims, key string) (uint64, bool) {
    switch v := claims[key].(type) {
    case float64:
        if v < 0 {
            return 0, false
        }
        return uint64(v), true
    case string:
        n, err := strconv.ParseUint(v, 10, 64)
        return n, err == nil
    }
    return 0, false
}
