package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/account-service/internal/domain"
)

// Signer turns claims into compact tokens and back. Implementations must bind
// the token type into the signature.
type Signer interface {
	Sign(claims *Claims) (string, error)
	Parse(raw string, typ domain.TokenType) (*Claims, error)
}

// Claims describes JWT payload.
type Claims struct {
	Type domain.TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Token converts verified claims into the domain representation.
func (c *Claims) Token() domain.Token {
	token := domain.Token{ID: c.ID, Subject: c.Subject, Type: c.Type}
	if c.IssuedAt != nil {
		token.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		token.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return token
}

// HMACSigner signs HS256 tokens with a key derived per token type, so an
// access token never verifies under the refresh key and vice versa.
type HMACSigner struct {
	keys map[domain.TokenType][]byte
}

// NewHMACSigner builds a signer from the shared secret.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrSigning)
	}
	return &HMACSigner{keys: map[domain.TokenType][]byte{
		domain.TokenTypeAccess:  deriveKey(secret, domain.TokenTypeAccess),
		domain.TokenTypeRefresh: deriveKey(secret, domain.TokenTypeRefresh),
	}}, nil
}

func deriveKey(secret string, typ domain.TokenType) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("token-type:" + string(typ)))
	return mac.Sum(nil)
}

// Sign builds and signs a JWT for the claims' token type.
func (s *HMACSigner) Sign(claims *Claims) (string, error) {
	key, ok := s.keys[claims.Type]
	if !ok {
		return "", fmt.Errorf("%w: unknown token type %q", ErrSigning, claims.Type)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return tokenString, nil
}

// Parse validates the signature against the key of typ and returns claims.
// Expiry is left to the caller, which owns the clock.
func (s *HMACSigner) Parse(raw string, typ domain.TokenType) (*Claims, error) {
	key, ok := s.keys[typ]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrTokenInvalid, typ)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenInvalid)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, typ, claims.Type)
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", ErrTokenInvalid)
	}
	return claims, nil
}
