package handler

import (
    "database/sql"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/ila26/platform-api/internal/config"
    "github.com/ila26/platform-api/internal/external"
    "github.com/ila26/platform-api/internal/model"
    "github.com/ila26/platform-api/internal/repository"
    "github.com/ila26/platform-api/internal/utils"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)

    cfg := config.Config{
        JWTSecret:    "test-secret",
        AccessTTLMin: 15,
        BcryptCost:   bcrypt.MinCost,
        OTPTTLMin:    10,
    }
    h := NewAuthHandler(cfg,
        repository.NewAccountRepo(db),
        repository.NewOTPRepo(db),
        repository.NewTenantRepo(db),
        external.NewMailer("", "noreply@test.local"),
        model.Role{ID: 1, Name: "Admin", IsSystem: true})
    return h, mock, func() { db.Close() }
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func mustHash(t *testing.T, plain string) string {
    h, err := utils.HashPassword(plain, bcrypt.MinCost)
    require.NoError(t, err)
    return h
}

func otpRows(codeHash string, used bool, expiresAt time.Time) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "email", "code_hash", "expires_at", "used", "created_at"}).
        AddRow(7, "john@acme.com", codeHash, expiresAt, used, time.Now().Add(-time.Minute))
}

func TestSendOTP_NewEmail(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT 1 FROM accounts").
        WithArgs("john@acme.com").
        WillReturnError(sql.ErrNoRows)
    mock.ExpectExec("INSERT INTO otp_codes").
        WithArgs("john@acme.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/send-otp", `{"email":"John@Acme.com"}`)
    require.NoError(t, h.SendOTP(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "OTP sent")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendOTP_EmailAlreadyRegistered(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT 1 FROM accounts").
        WithArgs("john@acme.com").
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/send-otp", `{"email":"john@acme.com"}`)
    require.NoError(t, h.SendOTP(c))

    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_Success(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, false, time.Now().UTC().Add(5*time.Minute)))
    mock.ExpectExec("UPDATE otp_codes SET used=1").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/verify-otp", `{"email":"john@acme.com","code":"123456"}`)
    require.NoError(t, h.VerifyOTP(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "true")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_WrongCode(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, false, time.Now().UTC().Add(5*time.Minute)))

    // A wrong code must not consume the stored one: no UPDATE expected.
    c, rec := newJSONContext(http.MethodPost, "/v1/auth/verify-otp", `{"email":"john@acme.com","code":"000000"}`)
    require.NoError(t, h.VerifyOTP(c))

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_Expired(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, false, time.Now().UTC().Add(-time.Minute)))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/verify-otp", `{"email":"john@acme.com","code":"123456"}`)
    require.NoError(t, h.VerifyOTP(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "expired")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyOTP_AlreadyUsed(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, true, time.Now().UTC().Add(5*time.Minute)))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/verify-otp", `{"email":"john@acme.com","code":"123456"}`)
    require.NoError(t, h.VerifyOTP(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "used")
    assert.NoError(t, mock.ExpectationsWereMet())
}

const registerBody = `{
    "email": "john@acme.com",
    "otp_code": "123456",
    "full_name": "John Doe",
    "company_name": "Acme SARL",
    "siret": "12345678901234",
    "kbis": "KBIS-1",
    "password": "s3cret-pass",
    "confirm_password": "s3cret-pass"
}`

func expectOTPConsumed(t *testing.T, mock sqlmock.Sqlmock) {
    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, false, time.Now().UTC().Add(5*time.Minute)))
    mock.ExpectExec("UPDATE otp_codes SET used=1").
        WithArgs(uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestRegister_Success(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    expectOTPConsumed(t, mock)
    mock.ExpectQuery("SELECT 1 FROM accounts").
        WithArgs("john@acme.com").
        WillReturnError(sql.ErrNoRows)

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO accounts").
        WithArgs("john@acme.com", sqlmock.AnyArg(), "John Doe").
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO tenants").
        WithArgs("Acme SARL", "12345678901234", "KBIS-1", uint64(42), model.TenantStatusActive).
        WillReturnResult(sqlmock.NewResult(9, 1))
    mock.ExpectQuery("SELECT creation_date FROM tenants").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"creation_date"}).AddRow(time.Now()))
    mock.ExpectExec("INSERT INTO subscriptions").
        WithArgs(uint64(9), model.PlanTierFree, uint32(1), model.SubscriptionStatusActive,
            "temp_42", sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(5, 1))
    mock.ExpectExec("INSERT INTO memberships").
        WithArgs(uint64(42), uint64(9), uint64(1), true).
        WillReturnResult(sqlmock.NewResult(3, 1))
    mock.ExpectCommit()

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", registerBody)
    require.NoError(t, h.Register(c))

    require.Equal(t, http.StatusCreated, rec.Code)

    var resp struct {
        AccessToken string `json:"access_token"`
        User        struct {
            ID            uint64 `json:"id"`
            Email         string `json:"email"`
            EmailVerified bool   `json:"email_verified"`
        } `json:"user"`
        Tenant struct {
            ID   uint64 `json:"id"`
            Name string `json:"name"`
            Role string `json:"role"`
        } `json:"tenant"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.NotEmpty(t, resp.AccessToken)
    assert.Equal(t, uint64(42), resp.User.ID)
    assert.Equal(t, "john@acme.com", resp.User.Email)
    assert.True(t, resp.User.EmailVerified)
    assert.Equal(t, uint64(9), resp.Tenant.ID)
    assert.Equal(t, "Acme SARL", resp.Tenant.Name)
    assert.Equal(t, "Admin", resp.Tenant.Role)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_PasswordMismatch(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    // The code is still consumed; nothing past the password check runs.
    expectOTPConsumed(t, mock)

    body := strings.Replace(registerBody, `"confirm_password": "s3cret-pass"`, `"confirm_password": "different"`, 1)
    c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", body)
    require.NoError(t, h.Register(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "passwords do not match")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmailRace(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    expectOTPConsumed(t, mock)
    mock.ExpectQuery("SELECT 1 FROM accounts").
        WithArgs("john@acme.com").
        WillReturnError(sql.ErrNoRows)

    // The pre-check passed but another request won the insert.
    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO accounts").
        WithArgs("john@acme.com", sqlmock.AnyArg(), "John Doe").
        WillReturnError(&mysqlDuplicateErr{})
    mock.ExpectRollback()

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", registerBody)
    require.NoError(t, h.Register(c))

    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

type mysqlDuplicateErr struct{}

func (e *mysqlDuplicateErr) Error() string {
    return "Error 1062 (23000): Duplicate entry 'john@acme.com' for key 'accounts.email'"
}

func TestRegister_BadOTPCreatesNothing(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    hash := mustHash(t, "123456")
    mock.ExpectQuery("SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes").
        WithArgs("john@acme.com").
        WillReturnRows(otpRows(hash, false, time.Now().UTC().Add(5*time.Minute)))

    body := strings.Replace(registerBody, `"otp_code": "123456"`, `"otp_code": "999999"`, 1)
    c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", body)
    require.NoError(t, h.Register(c))

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func accountRows(passwordHash string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "email_verified", "created_at", "updated_at"}).
        AddRow(42, "john@acme.com", passwordHash, "John Doe", true, now, now)
}

func TestLogin_Success(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts").
        WithArgs("john@acme.com").
        WillReturnRows(accountRows(mustHash(t, "s3cret-pass")))
    mock.ExpectQuery("SELECT m.tenant_id, t.name, t.status, ro.name, m.is_owner").
        WithArgs(uint64(42), model.TenantStatusActive).
        WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "name", "status", "name", "is_owner"}).
            AddRow(9, "Acme SARL", "ACTIVE", "Admin", true))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"email":"John@Acme.com","password":"s3cret-pass"}`)
    require.NoError(t, h.Login(c))

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "access_token")
    assert.Contains(t, rec.Body.String(), "Acme SARL")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts").
        WithArgs("nobody@acme.com").
        WillReturnError(sql.ErrNoRows)

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"email":"nobody@acme.com","password":"whatever"}`)
    require.NoError(t, h.Login(c))

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "invalid credentials")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts").
        WithArgs("john@acme.com").
        WillReturnRows(accountRows(mustHash(t, "s3cret-pass")))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"email":"john@acme.com","password":"wrong"}`)
    require.NoError(t, h.Login(c))

    // Same body as the unknown-email case.
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "invalid credentials")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_NoActiveTenant(t *testing.T) {
    h, mock, done := newTestAuthHandler(t)
    defer done()

    mock.ExpectQuery("SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts").
        WithArgs("john@acme.com").
        WillReturnRows(accountRows(mustHash(t, "s3cret-pass")))
    mock.ExpectQuery("SELECT m.tenant_id, t.name, t.status, ro.name, m.is_owner").
        WithArgs(uint64(42), model.TenantStatusActive).
        WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "name", "status", "name", "is_owner"}))

    c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"email":"john@acme.com","password":"s3cret-pass"}`)
    require.NoError(t, h.Login(c))

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Body.String(), "no active tenant")
    assert.NoError(t, mock.ExpectationsWereMet())
}
