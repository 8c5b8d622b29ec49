package external

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/go-resty/resty/v2"
)

// ErrPlacesUnavailable is returned when no Google Places API key is
// configured or Google rejects our credentials.
var ErrPlacesUnavailable = errors.New("Google Places API unavailable")

// PlacePrediction is one autocomplete suggestion.
type PlacePrediction struct {
    PlaceID              string `json:"place_id"`
    Description          string `json:"description"`
    StructuredFormatting struct {
        MainText      string `json:"main_text"`
        SecondaryText string `json:"secondary_text"`
    } `json:"structured_formatting"`
}

// PlaceDetails is the resolved address for a place_id.
type PlaceDetails struct {
    PlaceID           string             `json:"place_id"`
    FormattedAddress  string             `json:"formatted_address"`
    AddressComponents []AddressComponent `json:"address_components"`
    Geometry          struct {
        Location struct {
            Lat float64 `json:"lat"`
            Lng float64 `json:"lng"`
        } `json:"location"`
    } `json:"geometry"`
}

type AddressComponent struct {
    LongName  string   `json:"long_name"`
    ShortName string   `json:"short_name"`
    Types     []string `json:"types"`
}

// PlacesClient wraps the Google Places web API for address autocomplete
// and place-detail resolution.
type PlacesClient struct {
    http   *resty.Client
    apiKey string
}

func NewPlacesClient(apiKey string) *PlacesClient {
    c := resty.New().
        SetBaseURL("https://maps.googleapis.com/maps/api/place").
        SetTimeout(10 * time.Second)
    return &PlacesClient{http: c, apiKey: apiKey}
}

// Autocomplete returns address predictions for the input.  Inputs shorter
// than three characters return no predictions without calling Google.
func (c *PlacesClient) Autocomplete(ctx context.Context, input, countryCode string) ([]PlacePrediction, error) {
    if c.apiKey == "" {
        return nil, ErrPlacesUnavailable
    }
    if len(input) < 3 {
        return []PlacePrediction{}, nil
    }
    params := map[string]string{
        "key":   c.apiKey,
        "input": input,
        "types": "address",
    }
    if countryCode != "" {
        params["components"] = "country:" + countryCode
    }
    var body struct {
        Status      string            `json:"status"`
        Predictions []PlacePrediction `json:"predictions"`
    }
    _, err := c.http.R().
        SetContext(ctx).
        SetQueryParams(params).
        SetResult(&body).
        Get("/autocomplete/json")
    if err != nil {
        return nil, fmt.Errorf("places request failed: %w", err)
    }
    if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
        return nil, fmt.Errorf("places API error: %s", body.Status)
    }
    return body.Predictions, nil
}

// Details resolves a place_id into a formatted address with components
// and coordinates.
func (c *PlacesClient) Details(ctx context.Context, placeID string) (PlaceDetails, error) {
    if c.apiKey == "" {
        return PlaceDetails{}, ErrPlacesUnavailable
    }
    var body struct {
        Status string       `json:"status"`
        Result PlaceDetails `json:"result"`
    }
    _, err := c.http.R().
        SetContext(ctx).
        SetQueryParams(map[string]string{
            "key":      c.apiKey,
            "place_id": placeID,
            "fields":   "place_id,formatted_address,address_components,geometry",
        }).
        SetResult(&body).
        Get("/details/json")
    if err != nil {
        return PlaceDetails{}, fmt.Errorf("places request failed: %w", err)
    }
    if body.Status != "OK" {
        return PlaceDetails{}, fmt.Errorf("places API error: %s", body.Status)
    }
    return body.Result, nil
}

// Component helpers used when merging place details into a tenant address.

func (d PlaceDetails) City() string {
    if v := d.component("locality"); v != "" {
        return v
    }
    return d.component("administrative_area_level_2")
}

func (d PlaceDetails) PostalCode() string { return d.component("postal_code") }

func (d PlaceDetails) Country() string { return d.component("country") }

func (d PlaceDetails) component(typ string) string {
    for _, c := range d.AddressComponents {
        for _, t := range c.Types {
            if t == typ {
                return c.LongName
            }
        }
    }
    return ""
}
