package service

import "errors"

// Identity-facing errors surface to the caller as their literal category and
// nothing more. Login never reveals whether the email exists, and refresh
// never reveals whether a token was unknown, revoked or expired; collapsing
// the cases here keeps enumeration and replay probes blind.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password at login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredSession covers an unknown, revoked or expired
	// refresh token, including replay of an already-rotated token.
	ErrInvalidOrExpiredSession = errors.New("invalid or expired session")

	// ErrUnauthenticated covers a missing, malformed, tampered or expired
	// access token.
	ErrUnauthenticated = errors.New("unauthenticated")
)
