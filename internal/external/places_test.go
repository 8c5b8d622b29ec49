package external

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestPlacesClient(srvURL string) *PlacesClient {
    c := NewPlacesClient("test-key")
    c.http.SetBaseURL(srvURL)
    return c
}

func TestAutocomplete(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/autocomplete/json", r.URL.Path)
        q := r.URL.Query()
        assert.Equal(t, "10 rue de", q.Get("input"))
        assert.Equal(t, "address", q.Get("types"))
        assert.Equal(t, "country:fr", q.Get("components"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{
            "status": "OK",
            "predictions": [
                {"place_id": "pid-1", "description": "10 Rue de la Paix, Paris, France"},
                {"place_id": "pid-2", "description": "10 Rue de Rivoli, Paris, France"}
            ]
        }`))
    }))
    defer srv.Close()

    preds, err := newTestPlacesClient(srv.URL).Autocomplete(context.Background(), "10 rue de", "fr")
    require.NoError(t, err)
    require.Len(t, preds, 2)
    assert.Equal(t, "pid-1", preds[0].PlaceID)
}

func TestAutocomplete_ZeroResults(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "predictions": []}`))
    }))
    defer srv.Close()

    preds, err := newTestPlacesClient(srv.URL).Autocomplete(context.Background(), "zzzzz", "")
    require.NoError(t, err)
    assert.Empty(t, preds)
}

func TestAutocomplete_ShortInputSkipsCall(t *testing.T) {
    // Any network call would hit an unreachable host and fail.
    preds, err := newTestPlacesClient("http://unused").Autocomplete(context.Background(), "ab", "")
    require.NoError(t, err)
    assert.Empty(t, preds)
}

func TestAutocomplete_NoKey(t *testing.T) {
    _, err := NewPlacesClient("").Autocomplete(context.Background(), "10 rue de", "")
    assert.ErrorIs(t, err, ErrPlacesUnavailable)
}

func TestDetails_ComponentHelpers(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/details/json", r.URL.Path)
        assert.Equal(t, "pid-1", r.URL.Query().Get("place_id"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{
            "status": "OK",
            "result": {
                "place_id": "pid-1",
                "formatted_address": "10 Rue de la Paix, 75002 Paris, France",
                "address_components": [
                    {"long_name": "Paris", "short_name": "Paris", "types": ["locality", "political"]},
                    {"long_name": "75002", "short_name": "75002", "types": ["postal_code"]},
                    {"long_name": "France", "short_name": "FR", "types": ["country", "political"]}
                ],
                "geometry": {"location": {"lat": 48.8698, "lng": 2.3311}}
            }
        }`))
    }))
    defer srv.Close()

    d, err := newTestPlacesClient(srv.URL).Details(context.Background(), "pid-1")
    require.NoError(t, err)
    assert.Equal(t, "10 Rue de la Paix, 75002 Paris, France", d.FormattedAddress)
    assert.Equal(t, "Paris", d.City())
    assert.Equal(t, "75002", d.PostalCode())
    assert.Equal(t, "France", d.Country())
    assert.InDelta(t, 48.8698, d.Geometry.Location.Lat, 0.0001)
}

func TestDetails_APIError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"status": "REQUEST_DENIED"}`))
    }))
    defer srv.Close()

    _, err := newTestPlacesClient(srv.URL).Details(context.Background(), "pid-1")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
