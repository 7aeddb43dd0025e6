package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for every failed login: wrong
	// password, unknown email and deactivated accounts are indistinguishable
	// to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing rejects a mutating request carrying no X-CSRF-Token
	// header.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch rejects a mutating request whose token fails
	// verification.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
