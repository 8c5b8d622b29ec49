package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/ila26/platform-api/internal/config"
    "github.com/ila26/platform-api/internal/database"
    "github.com/ila26/platform-api/internal/external"
    "github.com/ila26/platform-api/internal/handler"
    "github.com/ila26/platform-api/internal/middleware"
    "github.com/ila26/platform-api/internal/repository"
    "github.com/ila26/platform-api/internal/router"
    "github.com/ila26/platform-api/internal/storage"
)

func main() {
    // A .env file is a dev convenience; production injects real env vars.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }
    defer db.Close()

    accounts := repository.NewAccountRepo(db)
    otps := repository.NewOTPRepo(db)
    tenants := repository.NewTenantRepo(db)
    roles := repository.NewRoleRepo(db)
    refs := repository.NewReferenceRepo(db)
    docs := repository.NewDocumentRepo(db)
    admins := repository.NewAdminRepo(db)

    // Registration assigns the tenant owner the seeded Admin system role.
    // A database without it cannot serve signups, so refuse to boot.
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    adminRole, err := roles.GetSystemRole(ctx, "Admin")
    cancel()
    if err != nil {
        log.Fatalf("system role Admin not found, run migrations/seed first: %v", err)
    }

    mailer := external.NewMailer(cfg.MailtrapToken, cfg.MailFrom)
    if cfg.MailtrapToken == "" {
        log.Println("MAILTRAP_API_TOKEN not set, OTP mail delivery disabled")
    }
    insee := external.NewInseeClient(cfg.InseeAPIKey)
    if cfg.InseeAPIKey == "" {
        log.Println("INSEE_API_KEY not set, SIRET validation will report unavailable")
    }
    places := external.NewPlacesClient(cfg.GoogleAPIKey)
    if cfg.GoogleAPIKey == "" {
        log.Println("GOOGLE_PLACES_API_KEY not set, address autocomplete will report unavailable")
    }

    var store *storage.ObjectStore
    if cfg.MinioEndpoint != "" {
        store, err = storage.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
        if err != nil {
            log.Fatalf("object storage connection failed: %v", err)
        }
    } else {
        log.Println("MINIO_ENDPOINT not set, uploads disabled")
    }

    rdb := config.NewRedisClient()
    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    authH := handler.NewAuthHandler(cfg, accounts, otps, tenants, mailer, adminRole)
    entH := handler.NewEnterpriseHandler(tenants, refs, places)
    filesH := handler.NewFilesHandler(tenants, docs, refs, store)
    lookupH := handler.NewLookupHandler(insee, places)
    adminH := handler.NewAdminHandler(cfg, admins)

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret, tenants, rateLimit)
    router.RegisterEnterprise(e, entH, filesH, cfg.JWTSecret, tenants)
    router.RegisterLookup(e, lookupH, cfg.JWTSecret, tenants, rateLimit)
    router.RegisterAdmin(e, adminH, cfg.AdminJWTSecret, rateLimit)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
