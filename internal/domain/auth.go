package domain

import "time"

// TokenType differentiates access and refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Identity is a principal whose credentials were checked.
type Identity struct {
	Subject  string
	Verified bool
}

// Token describes the claims carried by a signed token.
type Token struct {
	ID        string
	Subject   string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether now is past the token's expiry.
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenPair is issued together at login.
type TokenPair struct {
	Access       string
	AccessToken  Token
	Refresh      string
	RefreshToken Token
}

// AuthzStatus is the outcome of evaluating a bearer token.
type AuthzStatus string

const (
	AuthzAuthorized AuthzStatus = "authorized"
	AuthzExpired    AuthzStatus = "expired"
	AuthzInvalid    AuthzStatus = "invalid"
	AuthzMissing    AuthzStatus = "missing"
)

// AuthzResult carries the gate decision and, when authorized, the subject.
type AuthzResult struct {
	Status  AuthzStatus
	Subject string
	Token   Token
}

// Authorized reports whether the result grants access.
func (r AuthzResult) Authorized() bool {
	return r.Status == AuthzAuthorized
}
