package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ila26/platform-api/internal/model"
)

// OTPRepo persists one-time codes.  The table holds at most one row per
// email: otp_codes.email carries a unique index and issuance overwrites
// the previous row in place ("latest code wins").  Rows are never
// deleted; verification flips the used flag so a trail remains.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Upsert stores a fresh code hash for the email, resetting expiry and the
// used flag whether or not a prior row exists.
func (r *OTPRepo) Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO otp_codes (email, code_hash, expires_at, used)
		 VALUES (?,?,?,0)
		 ON DUPLICATE KEY UPDATE code_hash=VALUES(code_hash), expires_at=VALUES(expires_at), used=0, created_at=NOW()`,
		email, codeHash, expiresAt)
	return err
}

// Latest returns the most recently created code row for the email.  With
// the unique index there is at most one row, but the ordering is kept as
// an explicit tie-break should the schema ever revert to append-only.
func (r *OTPRepo) Latest(ctx context.Context, email string) (model.OneTimeCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var c model.OneTimeCode
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,code_hash,expires_at,used,created_at FROM otp_codes WHERE email=? ORDER BY created_at DESC LIMIT 1",
		email).Scan(&c.ID, &c.Email, &c.CodeHash, &c.ExpiresAt, &c.Used, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrOTPNotFound
	}
	return c, err
}

// MarkUsed consumes a code row.  A second verification of the same row
// will find used=1 and fail with ErrOTPUsed.
func (r *OTPRepo) MarkUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otp_codes SET used=1 WHERE id=?", id)
	return err
}
