// Package external hosts the thin HTTP clients this service consumes:
// the INSEE Sirene company registry, Google Places address lookups and
// the Mailtrap transactional mail API.  Each client is a small resty
// wrapper; none of them retries, callers surface failures directly.
package external

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "regexp"
    "strings"
    "time"

    "github.com/go-resty/resty/v2"
)

// Sentinel errors shared by the INSEE client.  Handlers map these onto
// HTTP statuses (404, 503, 400).
var (
    ErrSiretNotFound      = errors.New("siret not found in INSEE database")
    ErrInseeUnavailable   = errors.New("INSEE API unavailable")
    ErrInvalidSiretFormat = errors.New("invalid SIRET format: must be 14 digits")
)

var siretPattern = regexp.MustCompile(`^\d{14}$`)

// CompanyInfo is the extract of an INSEE establishment record returned to
// clients validating a SIRET.
type CompanyInfo struct {
    Siret        string `json:"siret"`
    Siren        string `json:"siren"`
    Name         string `json:"name"`
    Address      string `json:"address"`
    PostalCode   string `json:"postal_code"`
    City         string `json:"city"`
    Activity     string `json:"activity"`
    LegalForm    string `json:"legal_form"`
    CreationDate string `json:"creation_date"`
}

// InseeClient queries the Sirene V3 API.  When no API key is configured
// the client is still constructed but every call fails with
// ErrInseeUnavailable, mirroring the degraded-feature startup policy.
type InseeClient struct {
    http   *resty.Client
    apiKey string
}

func NewInseeClient(apiKey string) *InseeClient {
    c := resty.New().
        SetBaseURL("https://api.insee.fr/entreprises/sirene/V3").
        SetTimeout(10 * time.Second).
        SetHeader("Accept", "application/json")
    if apiKey != "" {
        c.SetAuthToken(apiKey)
    }
    return &InseeClient{http: c, apiKey: apiKey}
}

// sireneResponse mirrors the subset of the Sirene /siret payload we read.
type sireneResponse struct {
    Etablissement struct {
        UniteLegale struct {
            Siren        string `json:"siren"`
            Denomination string `json:"denominationUniteLegale"`
            FirstName    string `json:"prenom1UniteLegale"`
            LastName     string `json:"nomUniteLegale"`
            Activity     string `json:"activitePrincipaleUniteLegale"`
            LegalForm    string `json:"categorieJuridiqueUniteLegale"`
            CreationDate string `json:"dateCreationUniteLegale"`
        } `json:"uniteLegale"`
        Adresse struct {
            StreetNumber string `json:"numeroVoieEtablissement"`
            StreetType   string `json:"typeVoieEtablissement"`
            StreetLabel  string `json:"libelleVoieEtablissement"`
            PostalCode   string `json:"codePostalEtablissement"`
            City         string `json:"libelleCommuneEtablissement"`
        } `json:"adresseEtablissement"`
    } `json:"etablissement"`
}

// ValidateSiret checks a SIRET's format, looks it up in the Sirene
// registry and returns the company information on file.
func (c *InseeClient) ValidateSiret(ctx context.Context, siret string) (CompanyInfo, error) {
    if c.apiKey == "" {
        return CompanyInfo{}, ErrInseeUnavailable
    }
    clean := strings.ReplaceAll(siret, " ", "")
    if !siretPattern.MatchString(clean) {
        return CompanyInfo{}, ErrInvalidSiretFormat
    }

    var body sireneResponse
    resp, err := c.http.R().
        SetContext(ctx).
        SetResult(&body).
        Get("/siret/" + clean)
    if err != nil {
        return CompanyInfo{}, fmt.Errorf("insee request failed: %w", err)
    }
    switch resp.StatusCode() {
    case http.StatusOK:
    case http.StatusNotFound:
        return CompanyInfo{}, ErrSiretNotFound
    case http.StatusUnauthorized, http.StatusForbidden:
        return CompanyInfo{}, ErrInseeUnavailable
    default:
        return CompanyInfo{}, fmt.Errorf("insee returned status %d", resp.StatusCode())
    }

    est := body.Etablissement
    ul := est.UniteLegale
    name := ul.Denomination
    if name == "" {
        name = strings.TrimSpace(ul.FirstName + " " + ul.LastName)
    }
    addr := ""
    if est.Adresse.StreetNumber != "" {
        addr = strings.TrimSpace(strings.Join([]string{
            est.Adresse.StreetNumber, est.Adresse.StreetType, est.Adresse.StreetLabel,
        }, " "))
    }
    return CompanyInfo{
        Siret:        clean,
        Siren:        ul.Siren,
        Name:         name,
        Address:      addr,
        PostalCode:   est.Adresse.PostalCode,
        City:         est.Adresse.City,
        Activity:     ul.Activity,
        LegalForm:    ul.LegalForm,
        CreationDate: ul.CreationDate,
    }, nil
}

// ValidateKbis applies the registry heuristic for a KBIS reference: when
// a SIRET is supplied the KBIS must contain its SIREN prefix; otherwise a
// minimal length check applies.
func (c *InseeClient) ValidateKbis(kbis, siret string) bool {
    if siret != "" {
        clean := strings.ReplaceAll(siret, " ", "")
        if len(clean) >= 9 && strings.Contains(kbis, clean[:9]) {
            return true
        }
    }
    return len(kbis) >= 9
}
