package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/external"
    "github.com/ila26/platform-api/internal/model"
    "github.com/ila26/platform-api/internal/repository"
)

// EnterpriseHandler serves the tenant profile endpoints.  All routes are
// tenant-scoped: the middleware resolves the caller's membership and the
// handlers only ever touch the tenant in the token.
type EnterpriseHandler struct {
    Tenants *repository.TenantRepo
    Refs    *repository.ReferenceRepo
    Places  *external.PlacesClient
}

func NewEnterpriseHandler(tenants *repository.TenantRepo, refs *repository.ReferenceRepo, places *external.PlacesClient) *EnterpriseHandler {
    return &EnterpriseHandler{Tenants: tenants, Refs: refs, Places: places}
}

// tenantID pulls the tenant resolved by TenantAuth out of the context.
func tenantID(c echo.Context) (uint64, bool) {
    id, ok := c.Get("tenant_id").(uint64)
    return id, ok && id != 0
}

func accountID(c echo.Context) (uint64, bool) {
    id, ok := c.Get("account_id").(uint64)
    return id, ok && id != 0
}

// GetProfile returns the tenant profile with its subscription and
// reference data resolved.
func (h *EnterpriseHandler) GetProfile(c echo.Context) error {
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t, err := h.Tenants.GetByID(ctx, tid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    resp := echo.Map{
        "id":              t.ID,
        "name":            t.Name,
        "siret":           t.Siret,
        "kbis":            t.Kbis,
        "logo_url":        t.LogoURL,
        "cover_image_url": t.CoverImageURL,
        "creation_date":   t.CreationDate,
        "activity_domain": nil,
        "speciality":      nil,
        "address":         nil,
        "subscription":    nil,
    }
    if t.ActivityDomainID != nil {
        if d, err := h.Refs.GetActivityDomain(ctx, *t.ActivityDomainID); err == nil {
            resp["activity_domain"] = echo.Map{"id": d.ID, "name": d.Name}
        }
    }
    if t.SpecialityID != nil {
        if s, err := h.Refs.GetSpeciality(ctx, *t.SpecialityID); err == nil {
            resp["speciality"] = echo.Map{"id": s.ID, "name": s.Name}
        }
    }
    if len(t.AddressJSON) > 0 {
        var addr model.Address
        if err := json.Unmarshal(t.AddressJSON, &addr); err == nil {
            resp["address"] = addr
        }
    }
    if sub, err := h.Tenants.GetSubscription(ctx, tid); err == nil {
        resp["subscription"] = echo.Map{
            "id":        sub.ID,
            "plan_tier": sub.PlanTier,
            "status":    sub.Status,
            "max_users": sub.MaxUsers,
        }
    }
    return c.JSON(http.StatusOK, resp)
}

type updateProfileReq struct {
    Name             *string `json:"name"`
    Siret            *string `json:"siret"`
    Kbis             *string `json:"kbis"`
    ActivityDomainID *uint64 `json:"activity_domain_id"`
    SpecialityID     *uint64 `json:"speciality_id"`
}

// UpdateProfile applies a partial update to the tenant's basic info.  A
// speciality must belong to the tenant's activity domain; changing the
// domain without supplying a matching speciality clears the old one.
func (h *EnterpriseHandler) UpdateProfile(c echo.Context) error {
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req updateProfileReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    t, err := h.Tenants.GetByID(ctx, tid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    upd := repository.TenantProfileUpdate{
        Name:  req.Name,
        Siret: req.Siret,
        Kbis:  req.Kbis,
    }
    if req.ActivityDomainID != nil {
        if _, err := h.Refs.GetActivityDomain(ctx, *req.ActivityDomainID); err != nil {
            if err == sql.ErrNoRows {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "activity domain not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        upd.ActivityDomainID = req.ActivityDomainID
        if req.SpecialityID != nil {
            s, err := h.Refs.GetSpeciality(ctx, *req.SpecialityID)
            if err != nil || s.ActivityDomainID != *req.ActivityDomainID {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "speciality does not belong to the selected activity domain"})
            }
            upd.SpecialityID = req.SpecialityID
        } else {
            // Domain changed without a speciality: drop the stale one.
            upd.ClearSpeciality = true
        }
    } else if req.SpecialityID != nil {
        s, err := h.Refs.GetSpeciality(ctx, *req.SpecialityID)
        if err != nil {
            if err == sql.ErrNoRows {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "speciality not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        }
        if t.ActivityDomainID == nil || *t.ActivityDomainID != s.ActivityDomainID {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "speciality does not belong to tenant's activity domain"})
        }
        upd.SpecialityID = req.SpecialityID
    }

    if err := h.Tenants.UpdateProfile(ctx, tid, upd); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return h.GetProfile(c)
}

type updateAddressReq struct {
    PlaceID    string   `json:"place_id"`
    Street     string   `json:"street"`
    City       string   `json:"city"`
    PostalCode string   `json:"postal_code"`
    Country    string   `json:"country"`
    Latitude   *float64 `json:"latitude"`
    Longitude  *float64 `json:"longitude"`
}

// UpdateAddress stores the tenant address.  When a Google place_id is
// supplied its resolved components fill any field the client left blank;
// a Places failure falls back to the provided data rather than failing
// the update.
func (h *EnterpriseHandler) UpdateAddress(c echo.Context) error {
    tid, ok := tenantID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req updateAddressReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    addr := model.Address{
        Street:     req.Street,
        City:       req.City,
        PostalCode: req.PostalCode,
        Country:    req.Country,
        Latitude:   req.Latitude,
        Longitude:  req.Longitude,
    }
    if req.PlaceID != "" {
        if details, err := h.Places.Details(ctx, req.PlaceID); err == nil {
            if addr.Street == "" {
                addr.Street = details.FormattedAddress
            }
            if addr.City == "" {
                addr.City = details.City()
            }
            if addr.PostalCode == "" {
                addr.PostalCode = details.PostalCode()
            }
            if addr.Country == "" {
                addr.Country = details.Country()
            }
            lat, lng := details.Geometry.Location.Lat, details.Geometry.Location.Lng
            addr.Latitude, addr.Longitude = &lat, &lng
        } else {
            c.Logger().Warnf("place details for %s failed, using provided data: %v", req.PlaceID, err)
        }
    }

    blob, err := json.Marshal(addr)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode address failed"})
    }
    if err := h.Tenants.UpdateAddress(ctx, tid, blob); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"address": addr})
}

// Activities lists all activity domains.
func (h *EnterpriseHandler) Activities(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    domains, err := h.Refs.ActivityDomains(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"activities": domains})
}

// Specialities lists specialities for the activity domain given in the
// ?activity_domain_id query parameter.
func (h *EnterpriseHandler) Specialities(c echo.Context) error {
    domainID, err := strconv.ParseUint(c.QueryParam("activity_domain_id"), 10, 64)
    if err != nil || domainID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "activity_domain_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    specs, err := h.Refs.SpecialitiesByDomain(ctx, domainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"specialities": specs})
}
