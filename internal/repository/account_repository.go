package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ila26/platform-api/internal/model"
)

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// CreateTx inserts an account inside an existing transaction and returns
// its ID. Accounts are only created by the registration workflow, after
// the OTP was confirmed, so email_verified is always true on insert.
// A duplicate email surfaces as ErrEmailExists (MySQL error 1062); the
// unique index is the real guard against the check-then-create race.
func (r *AccountRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, passwordHash, fullName string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, full_name, email_verified) VALUES (?,?,?,1)",
		email, passwordHash, fullName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,email_verified,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ExistsByEmail reports whether an account row exists for the email.
func (r *AccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM accounts WHERE email=? LIMIT 1", email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
