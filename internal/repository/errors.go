// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto the HTTP failure taxonomy: ErrEmailExists becomes a 409,
// the OTP errors become 400 or 401 depending on whether the code itself
// was wrong, and ErrRoleNotFound is a deployment invariant violation
// surfaced as a 500.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// index on accounts.email. The storage-level constraint is the actual
// invariant enforcer; pre-insert existence checks only exist to give a
// friendlier error earlier.
var ErrEmailExists = errors.New("email already exists")

// ErrOTPNotFound is returned when no code row exists for an email.
var ErrOTPNotFound = errors.New("otp not found")

// ErrOTPUsed is returned when the stored code has already been consumed.
var ErrOTPUsed = errors.New("otp already used")

// ErrOTPExpired is returned when the stored code is past its window.
var ErrOTPExpired = errors.New("otp expired")

// ErrOTPMismatch is returned when the presented code does not match the
// stored hash. Handlers should translate this into a 401, unlike the
// other OTP errors which are 400s.
var ErrOTPMismatch = errors.New("invalid otp")

// ErrRoleNotFound is returned when an expected system role is absent.
// This is a configuration error, not a user error.
var ErrRoleNotFound = errors.New("system role not found")

// ErrNoActiveTenant is returned when an account has no membership in any
// ACTIVE tenant.
var ErrNoActiveTenant = errors.New("no active tenant")
