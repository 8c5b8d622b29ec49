package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/config"
    "github.com/ila26/platform-api/internal/repository"
    "github.com/ila26/platform-api/internal/utils"
)

// AdminHandler serves the back-office login.  Admin accounts live in
// their own table and are provisioned out of band; there is no signup.
type AdminHandler struct {
    Cfg    config.Config
    Admins *repository.AdminRepo
}

func NewAdminHandler(cfg config.Config, admins *repository.AdminRepo) *AdminHandler {
    return &AdminHandler{Cfg: cfg, Admins: admins}
}

type adminLoginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

// Login authenticates a back-office admin.  Unknown email and wrong
// password return the same 401 body.
func (h *AdminHandler) Login(c echo.Context) error {
    var req adminLoginReq
    if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    admin, err := h.Admins.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(admin.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    if err := h.Admins.TouchLastLogin(ctx, admin.ID); err != nil {
        c.Logger().Warnf("touch last login for admin %d failed: %v", admin.ID, err)
    }

    token, err := utils.NewAdminToken(h.Cfg.AdminJWTSecret, admin.ID, admin.Email, admin.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "access_token": token.Token,
        "expires":      token.Exp,
        "admin": echo.Map{
            "id":    admin.ID,
            "email": admin.Email,
            "role":  admin.Role,
        },
    })
}

// Me returns the authenticated admin's claims.
func (h *AdminHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "id":    c.Get("admin_id"),
        "email": c.Get("email"),
        "role":  c.Get("role"),
    })
}
