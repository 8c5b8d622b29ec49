package external

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const sireneOKBody = `{
    "etablissement": {
        "uniteLegale": {
            "siren": "123456789",
            "denominationUniteLegale": "ACME SARL",
            "activitePrincipaleUniteLegale": "62.01Z",
            "categorieJuridiqueUniteLegale": "5499",
            "dateCreationUniteLegale": "2015-03-02"
        },
        "adresseEtablissement": {
            "numeroVoieEtablissement": "10",
            "typeVoieEtablissement": "RUE",
            "libelleVoieEtablissement": "DE LA PAIX",
            "codePostalEtablissement": "75002",
            "libelleCommuneEtablissement": "PARIS"
        }
    }
}`

func newTestInseeClient(srvURL string) *InseeClient {
    c := NewInseeClient("test-key")
    c.http.SetBaseURL(srvURL)
    return c
}

func TestValidateSiret_Found(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/siret/12345678901234", r.URL.Path)
        assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(sireneOKBody))
    }))
    defer srv.Close()

    // Spaces in the input are tolerated and stripped.
    info, err := newTestInseeClient(srv.URL).ValidateSiret(context.Background(), "123 456 789 01234")
    require.NoError(t, err)
    assert.Equal(t, "12345678901234", info.Siret)
    assert.Equal(t, "123456789", info.Siren)
    assert.Equal(t, "ACME SARL", info.Name)
    assert.Equal(t, "10 RUE DE LA PAIX", info.Address)
    assert.Equal(t, "75002", info.PostalCode)
    assert.Equal(t, "PARIS", info.City)
}

func TestValidateSiret_PersonNameFallback(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"etablissement":{"uniteLegale":{"siren":"123456789","prenom1UniteLegale":"Jean","nomUniteLegale":"DUPONT"},"adresseEtablissement":{}}}`))
    }))
    defer srv.Close()

    info, err := newTestInseeClient(srv.URL).ValidateSiret(context.Background(), "12345678901234")
    require.NoError(t, err)
    assert.Equal(t, "Jean DUPONT", info.Name)
}

func TestValidateSiret_NotFound(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusNotFound)
    }))
    defer srv.Close()

    _, err := newTestInseeClient(srv.URL).ValidateSiret(context.Background(), "12345678901234")
    assert.ErrorIs(t, err, ErrSiretNotFound)
}

func TestValidateSiret_BadCredentials(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
    }))
    defer srv.Close()

    _, err := newTestInseeClient(srv.URL).ValidateSiret(context.Background(), "12345678901234")
    assert.ErrorIs(t, err, ErrInseeUnavailable)
}

func TestValidateSiret_BadFormat(t *testing.T) {
    c := newTestInseeClient("http://unused")
    _, err := c.ValidateSiret(context.Background(), "not-a-siret")
    assert.ErrorIs(t, err, ErrInvalidSiretFormat)

    _, err = c.ValidateSiret(context.Background(), "1234")
    assert.ErrorIs(t, err, ErrInvalidSiretFormat)
}

func TestValidateSiret_NoKey(t *testing.T) {
    _, err := NewInseeClient("").ValidateSiret(context.Background(), "12345678901234")
    assert.ErrorIs(t, err, ErrInseeUnavailable)
}

func TestValidateKbis(t *testing.T) {
    c := NewInseeClient("")
    assert.True(t, c.ValidateKbis("RCS PARIS 123456789", "12345678901234"))
    assert.True(t, c.ValidateKbis("long-enough-ref", ""))
    assert.False(t, c.ValidateKbis("short", ""))
}
