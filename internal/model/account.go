package model

import "time"

// Account represents an application user record as stored in the
// `accounts` table.  Accounts are only ever created by the registration
// workflow after OTP verification, so EmailVerified is true from the
// moment the row exists.  The json tags are omitted here because these
// structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID            – primary key identifier of the account.
//  Email         – unique email address, normalized to lower case.
//  PasswordHash  – bcrypt hashed password.  Empty for OAuth-only accounts.
//  FullName      – display name captured at registration.
//  EmailVerified – whether the email was confirmed via OTP.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Account struct {
    ID            uint64    // accounts.id
    Email         string    // accounts.email
    PasswordHash  string    // accounts.password_hash
    FullName      string    // accounts.full_name
    EmailVerified bool      // accounts.email_verified
    CreatedAt     time.Time // accounts.created_at
    UpdatedAt     time.Time // accounts.updated_at
}

// OneTimeCode models a row in the `otp_codes` table.  At most one row
// exists per email: issuing a new code overwrites the previous one in
// place ("latest code wins").  Only a bcrypt hash of the code is stored,
// never the plaintext.  Rows are marked used rather than deleted so a
// verification trail survives.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – the address the code was issued for (unique).
//  CodeHash  – bcrypt digest of the 6-digit code.
//  ExpiresAt – instant after which the code is rejected.
//  Used      – set once the code has been successfully verified.
//  CreatedAt – timestamp of (re-)issuance.
type OneTimeCode struct {
    ID        uint64    // otp_codes.id
    Email     string    // otp_codes.email
    CodeHash  string    // otp_codes.code_hash
    ExpiresAt time.Time // otp_codes.expires_at
    Used      bool      // otp_codes.used
    CreatedAt time.Time // otp_codes.created_at
}
