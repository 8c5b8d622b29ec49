package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
    parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    require.NoError(t, err)
    require.True(t, parsed.Valid)
    claims, ok := parsed.Claims.(jwt.MapClaims)
    require.True(t, ok)
    return claims
}

func TestNewAccessToken(t *testing.T) {
    access, err := NewAccessToken("secret", 42, "john@acme.com", 9, "Admin", 15)
    require.NoError(t, err)
    assert.NotEmpty(t, access.Token)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), access.Exp, 2*time.Second)

    claims := parseClaims(t, access.Token, "secret")
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "john@acme.com", claims["email"])
    assert.Equal(t, float64(9), claims["tenant_id"])
    assert.Equal(t, "Admin", claims["role"])
    assert.NotContains(t, claims, "admin")
}

func TestNewAccessToken_WrongSecretRejected(t *testing.T) {
    access, err := NewAccessToken("secret", 42, "john@acme.com", 9, "Admin", 15)
    require.NoError(t, err)

    _, err = jwt.Parse(access.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("other-secret"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    assert.Error(t, err)
}

func TestNewAdminToken(t *testing.T) {
    access, err := NewAdminToken("admin-secret", 3, "ops@ila26.com", "SUPER_ADMIN", 30)
    require.NoError(t, err)

    claims := parseClaims(t, access.Token, "admin-secret")
    assert.Equal(t, float64(3), claims["sub"])
    assert.Equal(t, "SUPER_ADMIN", claims["role"])
    assert.Equal(t, true, claims["admin"])
    assert.NotContains(t, claims, "tenant_id")
}
