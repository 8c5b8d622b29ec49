package storage

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
    key := ObjectKey("logos", 9, "My Logo (v2).png")

    parts := strings.SplitN(key, "/", 3)
    require.Len(t, parts, 3)
    assert.Equal(t, "logos", parts[0])
    assert.Equal(t, "9", parts[1])
    // Spaces and parentheses are replaced, the extension survives.
    assert.True(t, strings.HasSuffix(parts[2], "My_Logo__v2_.png"), parts[2])
    assert.NotContains(t, key, " ")
}

func TestObjectKey_Unique(t *testing.T) {
    a := ObjectKey("documents", 9, "contract.pdf")
    b := ObjectKey("documents", 9, "contract.pdf")
    assert.NotEqual(t, a, b)
}

func TestKeyFromURL(t *testing.T) {
    key := "logos/9/1700000000-abcd1234-logo.png"
    url := "http://minio.local:9000/ila26/" + key
    assert.Equal(t, key, KeyFromURL(url))

    assert.Equal(t, "", KeyFromURL("http://minio.local:9000/justbucket"))
    assert.Equal(t, "", KeyFromURL("://not a url"))
}
