package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/external"
)

// LookupHandler proxies SIRET validation and address autocomplete to the
// INSEE and Google Places APIs so the frontend never holds those keys.
type LookupHandler struct {
    Insee  *external.InseeClient
    Places *external.PlacesClient
}

func NewLookupHandler(insee *external.InseeClient, places *external.PlacesClient) *LookupHandler {
    return &LookupHandler{Insee: insee, Places: places}
}

type validateSiretReq struct {
    Siret string `json:"siret"`
}

// ValidateSiret checks a SIRET against the INSEE Sirene registry and
// returns the registered company details on success.
func (h *LookupHandler) ValidateSiret(c echo.Context) error {
    var req validateSiretReq
    if err := c.Bind(&req); err != nil || req.Siret == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "siret required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    info, err := h.Insee.ValidateSiret(ctx, req.Siret)
    switch {
    case errors.Is(err, external.ErrInvalidSiretFormat):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "siret must be 14 digits"})
    case errors.Is(err, external.ErrSiretNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "siret not found in the Sirene registry"})
    case errors.Is(err, external.ErrInseeUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "siret validation temporarily unavailable"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "siret validation failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": true, "company": info})
}

type validateKbisReq struct {
    Kbis  string `json:"kbis"`
    Siret string `json:"siret"`
}

// ValidateKbis runs the heuristic KBIS check.  A real registry lookup
// would need an Infogreffe subscription.
func (h *LookupHandler) ValidateKbis(c echo.Context) error {
    var req validateKbisReq
    if err := c.Bind(&req); err != nil || req.Kbis == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "kbis required"})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": h.Insee.ValidateKbis(req.Kbis, req.Siret)})
}

// AutocompleteAddress forwards address queries to Google Places.
// ?q= is the partial input, ?country= an optional ISO country filter.
func (h *LookupHandler) AutocompleteAddress(c echo.Context) error {
    input := c.QueryParam("q")
    if len(input) < 3 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "query must be at least 3 characters"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    preds, err := h.Places.Autocomplete(ctx, input, c.QueryParam("country"))
    if err != nil {
        if errors.Is(err, external.ErrPlacesUnavailable) {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "address lookup temporarily unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "address lookup failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"predictions": preds})
}
