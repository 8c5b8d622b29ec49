package external

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSendOTPMail(t *testing.T) {
    var got sendRequest
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/api/send", r.URL.Path)
        assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
        require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
        _, _ = w.Write([]byte(`{"success": true}`))
    }))
    defer srv.Close()

    m := NewMailer("test-token", "noreply@ila26.com")
    m.http.SetBaseURL(srv.URL)

    require.NoError(t, m.SendOTP(context.Background(), "john@acme.com", "123456", 10))
    assert.Equal(t, "noreply@ila26.com", got.From.Email)
    require.Len(t, got.To, 1)
    assert.Equal(t, "john@acme.com", got.To[0].Email)
    assert.Contains(t, got.Subject, "Verification Code")
    assert.Contains(t, got.Text, "123456")
    assert.Contains(t, got.HTML, "123456")
    assert.Contains(t, got.Text, "10 minutes")
}

func TestSend_APIError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
        _, _ = w.Write([]byte(`{"errors": ["Unauthorized"]}`))
    }))
    defer srv.Close()

    m := NewMailer("bad-token", "noreply@ila26.com")
    m.http.SetBaseURL(srv.URL)

    err := m.Send(context.Background(), "john@acme.com", "subject", "", "body")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "401")
}

func TestSend_Unconfigured(t *testing.T) {
    m := NewMailer("", "noreply@ila26.com")
    err := m.Send(context.Background(), "john@acme.com", "subject", "", "body")
    assert.ErrorIs(t, err, ErrMailUnconfigured)
}
