package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // SQL database interactions
    "fmt"          // synthetic billing reference formatting
    "log"          // swallowed mail-delivery failures are logged here
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls and OTP expiry

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/ila26/platform-api/internal/config"     // app configuration
    "github.com/ila26/platform-api/internal/external"   // mail collaborator
    "github.com/ila26/platform-api/internal/model"      // table-mirror structs
    "github.com/ila26/platform-api/internal/repository" // DB repositories
    "github.com/ila26/platform-api/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for the OTP, registration and login
// endpoints.  AdminRole is the pre-seeded system role resolved once at
// startup; registration fails fast at boot rather than querying the role
// by name on every request.
type AuthHandler struct {
    Cfg       config.Config
    Accounts  *repository.AccountRepo
    OTPs      *repository.OTPRepo
    TenantRepo *repository.TenantRepo
    Mailer    *external.Mailer
    AdminRole model.Role
}

func NewAuthHandler(cfg config.Config, accounts *repository.AccountRepo, otps *repository.OTPRepo,
    tenants *repository.TenantRepo, mailer *external.Mailer, adminRole model.Role) *AuthHandler {
    return &AuthHandler{
        Cfg:       cfg,
        Accounts:  accounts,
        OTPs:      otps,
        TenantRepo: tenants,
        Mailer:    mailer,
        AdminRole: adminRole,
    }
}

// ----- DTOs -----

type sendOTPReq struct {
    Email string `json:"email"`
}
type verifyOTPReq struct {
    Email string `json:"email"`
    Code  string `json:"code"`
}
type registerReq struct {
    Email           string `json:"email"`
    OTPCode         string `json:"otp_code"`
    FullName        string `json:"full_name"`
    CompanyName     string `json:"company_name"`
    Siret           string `json:"siret"`
    Kbis            string `json:"kbis"`
    Password        string `json:"password"`
    ConfirmPassword string `json:"confirm_password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID            uint64 `json:"id"`
    Email         string `json:"email"`
    FullName      string `json:"full_name"`
    EmailVerified bool   `json:"email_verified"`
}
type tenantPart struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
    Role string `json:"role"`
}
type authResp struct {
    AccessToken string     `json:"access_token"`
    Expires     time.Time  `json:"expires"`
    User        userPart   `json:"user"`
    Tenant      tenantPart `json:"tenant"`
}

// SendOTP issues a one-time code to an email that is not yet registered.
// Only a bcrypt hash of the code is stored; issuing again overwrites the
// previous code ("latest code wins").  Delivery runs in the background
// and a delivery failure does not fail the request: the stored code
// remains valid and can be re-sent.
func (h *AuthHandler) SendOTP(c echo.Context) error {
    var req sendOTPReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    exists, err := h.Accounts.ExistsByEmail(ctx, req.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    }

    code, err := utils.GenerateOTPCode()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
    }
    codeHash, err := utils.HashPassword(code, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code hashing failed"})
    }
    expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
    if err := h.OTPs.Upsert(ctx, req.Email, codeHash, expiresAt); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store code failed"})
    }

    // Fire-and-forget delivery.  The request context ends with the
    // response, so the send gets its own deadline.
    email := req.Email
    ttl := h.Cfg.OTPTTLMin
    go func() {
        sendCtx, sendCancel := context.WithTimeout(context.Background(), 20*time.Second)
        defer sendCancel()
        if err := h.Mailer.SendOTP(sendCtx, email, code, ttl); err != nil {
            log.Printf("otp mail to %s failed: %v", email, err)
        }
    }()

    return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to your email"})
}

// VerifyOTP checks a presented code and consumes it on success.  The same
// verification runs inside Register; a code verified here cannot be
// replayed there.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
    var req verifyOTPReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.consumeOTP(ctx, req.Email, req.Code); err != nil {
        status, msg := otpFailure(err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

// consumeOTP looks up the newest code row for the email, validates it and
// marks it used.  The returned errors are the repository OTP sentinels.
func (h *AuthHandler) consumeOTP(ctx context.Context, email, code string) error {
    otp, err := h.OTPs.Latest(ctx, email)
    if err != nil {
        return err
    }
    if otp.Used {
        return repository.ErrOTPUsed
    }
    if time.Now().UTC().After(otp.ExpiresAt) {
        return repository.ErrOTPExpired
    }
    if !utils.VerifyPassword(otp.CodeHash, code) {
        return repository.ErrOTPMismatch
    }
    return h.OTPs.MarkUsed(ctx, otp.ID)
}

// otpFailure maps OTP sentinels onto the HTTP taxonomy: a wrong code is a
// 401, everything else about the code's state is a 400.
func otpFailure(err error) (int, string) {
    switch err {
    case repository.ErrOTPNotFound:
        return http.StatusBadRequest, "otp not found"
    case repository.ErrOTPUsed:
        return http.StatusBadRequest, "otp has already been used"
    case repository.ErrOTPExpired:
        return http.StatusBadRequest, "otp has expired"
    case repository.ErrOTPMismatch:
        return http.StatusUnauthorized, "invalid otp"
    }
    return http.StatusInternalServerError, "otp verification failed"
}

// Register runs the OTP-gated registration workflow: consume the code,
// validate the password pair, then create the account, tenant,
// subscription and owner membership as one transaction.  Any failure
// inside the unit rolls the whole unit back; no partial account or
// tenant ever persists.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.OTPCode == "" || req.Password == "" ||
        req.FullName == "" || req.CompanyName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    // Step 1: the OTP gate.  The code is consumed here; a retry of the
    // same request will fail with "already used".
    if err := h.consumeOTP(ctx, req.Email, req.OTPCode); err != nil {
        status, msg := otpFailure(err)
        return c.JSON(status, echo.Map{"error": msg})
    }

    // Step 2: password confirmation.
    if req.Password != req.ConfirmPassword {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
    }

    // Step 3: friendly duplicate check.  The unique index on
    // accounts.email inside the transaction is the actual enforcer.
    exists, err := h.Accounts.ExistsByEmail(ctx, req.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if exists {
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    }

    // Step 4: hash the password; the plaintext is not referenced again.
    passwordHash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password hashing failed"})
    }

    // Step 5: the atomic unit.
    tx, err := h.TenantRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    accountID, err := h.Accounts.CreateTx(ctx, tx, req.Email, passwordHash, req.FullName)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
    }

    tenant := model.Tenant{
        Name:    req.CompanyName,
        Siret:   req.Siret,
        Kbis:    req.Kbis,
        OwnerID: accountID,
        Status:  model.TenantStatusActive,
    }
    if err := h.TenantRepo.CreateTx(ctx, tx, &tenant); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tenant failed"})
    }

    now := time.Now().UTC()
    sub := model.Subscription{
        TenantID:           tenant.ID,
        PlanTier:           model.PlanTierFree,
        MaxUsers:           1,
        Status:             model.SubscriptionStatusActive,
        BillingRef:         fmt.Sprintf("temp_%d", accountID), // placeholder until payment integration
        CurrentPeriodStart: now,
        CurrentPeriodEnd:   now.AddDate(1, 0, 0),
    }
    if err := h.TenantRepo.CreateSubscriptionTx(ctx, tx, &sub); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create subscription failed"})
    }

    membership := model.Membership{
        AccountID: accountID,
        TenantID:  tenant.ID,
        RoleID:    h.AdminRole.ID,
        IsOwner:   true,
    }
    if err := h.TenantRepo.CreateMembershipTx(ctx, tx, &membership); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create membership failed"})
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    // Step 7: issue the session token scoped to the new tenant.
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, accountID, req.Email, tenant.ID, h.AdminRole.Name, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        AccessToken: access.Token,
        Expires:     access.Exp,
        User: userPart{
            ID:            accountID,
            Email:         req.Email,
            FullName:      req.FullName,
            EmailVerified: true,
        },
        Tenant: tenantPart{ID: tenant.ID, Name: tenant.Name, Role: h.AdminRole.Name},
    })
}

// Login verifies credentials and issues a token scoped to the account's
// primary tenant: the owned one when present, otherwise the earliest
// ACTIVE membership.  Every credential failure returns the same generic
// message so account existence does not leak.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    a, err := h.Accounts.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    // Accounts created through OAuth have no password hash; they cannot
    // use password login.
    if a.PasswordHash == "" || !utils.VerifyPassword(a.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    mi, err := h.TenantRepo.PrimaryMembership(ctx, a.ID)
    if err != nil {
        if err == repository.ErrNoActiveTenant {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no active tenant found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, a.Email, mi.TenantID, mi.RoleName, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        AccessToken: access.Token,
        Expires:     access.Exp,
        User: userPart{
            ID:            a.ID,
            Email:         a.Email,
            FullName:      a.FullName,
            EmailVerified: a.EmailVerified,
        },
        Tenant: tenantPart{ID: mi.TenantID, Name: mi.TenantName, Role: mi.RoleName},
    })
}

// Tenants lists every tenant the authenticated account belongs to,
// owners first.  Protected; requires TenantAuth.
func (h *AuthHandler) Tenants(c echo.Context) error {
    accountID, ok := c.Get("account_id").(uint64)
    if !ok || accountID == 0 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    memberships, err := h.TenantRepo.ListMemberships(ctx, accountID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]echo.Map, 0, len(memberships))
    for _, m := range memberships {
        out = append(out, echo.Map{
            "id":       m.TenantID,
            "name":     m.TenantName,
            "status":   m.TenantStatus,
            "role":     m.RoleName,
            "is_owner": m.IsOwner,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"tenants": out})
}

// Me returns the identity the tenant-scoped middleware resolved.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "account_id": c.Get("account_id"),
        "email":      c.Get("email"),
        "tenant_id":  c.Get("tenant_id"),
        "role":       c.Get("role"),
    })
}
