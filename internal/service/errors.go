// Package service orchestrates the authentication and account
// management flows on top of the repositories, the token codec and the
// RBAC gate. Sentinel errors defined here are the service-level part
// of the error taxonomy; token and storage kinds live next to the code
// that detects them (utils, rbac, repository).
package service

import "errors"

// ErrIncorrectPassword is returned on a login hash mismatch.
var ErrIncorrectPassword = errors.New("incorrect password")

// ErrNotVerifiedCredentials is returned when a user logs in before
// confirming their registration email.
var ErrNotVerifiedCredentials = errors.New("credentials not verified")

// ErrAccountBlocked is returned when an admin has blocked the account.
var ErrAccountBlocked = errors.New("account is blocked")

// ErrInvalidInput is wrapped around field-level validation failures of
// registration and profile-update payloads.
var ErrInvalidInput = errors.New("invalid input")

// ErrExternal covers unclassified downstream failures, e.g. token
// issuance blowing up unexpectedly. Nothing in this core crashes the
// process; fallible external calls map here when no specific kind fits.
var ErrExternal = errors.New("something went wrong, try again later")
