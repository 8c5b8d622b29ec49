package router

import (
    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/handler"
    "github.com/ila26/platform-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the public authentication flow and the
// session-scoped account endpoints.  rateLimit guards the endpoints an
// attacker would hammer (OTP issuance, credential guessing); resolver
// re-reads the caller's membership on every protected request so a
// revoked membership cuts access immediately.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string,
    resolver middleware.MembershipResolver, rateLimit echo.MiddlewareFunc) {

    g := e.Group("/v1/auth")
    g.POST("/send-otp", a.SendOTP, rateLimit)
    g.POST("/verify-otp", a.VerifyOTP, rateLimit)
    g.POST("/register", a.Register, rateLimit)
    g.POST("/login", a.Login, rateLimit)

    auth := e.Group("/v1")
    auth.Use(middleware.TenantAuth(jwtSecret, resolver))
    auth.GET("/me", a.Me)
    auth.GET("/tenants", a.Tenants)
}

// RegisterEnterprise wires the tenant profile, media, document and
// reference-data endpoints.  Reads are open to every tenant role; every
// write requires the Admin role within the tenant.
func RegisterEnterprise(e *echo.Echo, ent *handler.EnterpriseHandler, files *handler.FilesHandler,
    jwtSecret string, resolver middleware.MembershipResolver) {

    g := e.Group("/v1/enterprise")
    g.Use(middleware.TenantAuth(jwtSecret, resolver))

    g.GET("/profile", ent.GetProfile)
    g.GET("/activities", ent.Activities)
    g.GET("/specialities", ent.Specialities)
    g.GET("/documents", files.ListDocuments)
    g.GET("/document-categories", files.DocumentCategories)

    admin := middleware.RequireRole("Admin")
    g.PATCH("/profile", ent.UpdateProfile, admin)
    g.PUT("/address", ent.UpdateAddress, admin)
    g.POST("/logo", files.UploadLogo, admin)
    g.DELETE("/logo", files.DeleteLogo, admin)
    g.POST("/cover", files.UploadCover, admin)
    g.DELETE("/cover", files.DeleteCover, admin)
    g.POST("/documents", files.UploadDocument, admin)
    g.DELETE("/documents/:id", files.DeleteDocument, admin)
}

// RegisterLookup wires the external validation and autocomplete proxies.
// They sit behind tenant auth plus rate limiting because each call spends
// quota against a paid upstream API.
func RegisterLookup(e *echo.Echo, l *handler.LookupHandler, jwtSecret string,
    resolver middleware.MembershipResolver, rateLimit echo.MiddlewareFunc) {

    g := e.Group("/v1/lookup")
    g.Use(middleware.TenantAuth(jwtSecret, resolver))
    g.POST("/validate-siret", l.ValidateSiret, rateLimit)
    g.POST("/validate-kbis", l.ValidateKbis, rateLimit)
    g.GET("/address", l.AutocompleteAddress, rateLimit)
}

// RegisterAdmin wires the back-office API under its own prefix with its
// own signing secret.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, adminJWTSecret string, rateLimit echo.MiddlewareFunc) {
    g := e.Group("/admin/v1")
    g.POST("/auth/login", a.Login, rateLimit)

    auth := g.Group("")
    auth.Use(middleware.AdminAuth(adminJWTSecret))
    auth.GET("/me", a.Me)
}
