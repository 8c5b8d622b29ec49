package utils

import (
    "strconv"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestGenerateOTPCode(t *testing.T) {
    seen := make(map[string]bool)
    for i := 0; i < 50; i++ {
        code, err := GenerateOTPCode()
        require.NoError(t, err)
        require.Len(t, code, 6)

        n, err := strconv.Atoi(code)
        require.NoError(t, err)
        assert.GreaterOrEqual(t, n, 100000)
        assert.LessOrEqual(t, n, 999999)
        seen[code] = true
    }
    // 50 draws from a 900000-value space colliding down to a handful
    // would indicate a broken generator.
    assert.Greater(t, len(seen), 40)
}

func TestOTPCodeHashRoundTrip(t *testing.T) {
    code, err := GenerateOTPCode()
    require.NoError(t, err)

    hash, err := HashPassword(code, bcrypt.MinCost)
    require.NoError(t, err)
    assert.NotEqual(t, code, hash)

    assert.True(t, VerifyPassword(hash, code))
    assert.False(t, VerifyPassword(hash, "000000"))
}
