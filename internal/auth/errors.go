package auth

import "errors"

// Credential errors.
var (
	ErrInvalidInput       = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Token errors.
var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrNoActionNeeded = errors.New("access token still valid")
	ErrReauthRequired = errors.New("re-authentication required")

	// ErrSigning is returned when key material cannot produce a signature.
	ErrSigning = errors.New("token signing failed")
)
