package auth

import (
	"strings"
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// Gate evaluates bearer tokens without touching persistence.
type Gate struct {
	signer Signer
	now    func() time.Time
}

// NewGate constructs a gate; a nil clock means time.Now.
func NewGate(signer Signer, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{signer: signer, now: now}
}

// Authorize checks an access token.
func (g *Gate) Authorize(raw string) domain.AuthzResult {
	return g.evaluate(raw, domain.TokenTypeAccess)
}

// AuthorizeHeader checks the value of an Authorization header.
func (g *Gate) AuthorizeHeader(header string) domain.AuthzResult {
	header = strings.TrimSpace(header)
	if header == "" {
		return domain.AuthzResult{Status: domain.AuthzMissing}
	}
	raw, ok := BearerToken(header)
	if !ok {
		return domain.AuthzResult{Status: domain.AuthzInvalid}
	}
	return g.Authorize(raw)
}

// Subject returns the subject of a valid access token or the matching
// token error.
func (g *Gate) Subject(raw string) (string, error) {
	result := g.Authorize(raw)
	if err := ResultError(result); err != nil {
		return "", err
	}
	return result.Subject, nil
}

func (g *Gate) evaluate(raw string, typ domain.TokenType) domain.AuthzResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.AuthzResult{Status: domain.AuthzMissing}
	}

	claims, err := g.signer.Parse(raw, typ)
	if err != nil {
		return domain.AuthzResult{Status: domain.AuthzInvalid}
	}

	token := claims.Token()
	if token.Expired(g.now()) {
		return domain.AuthzResult{Status: domain.AuthzExpired, Subject: token.Subject, Token: token}
	}
	return domain.AuthzResult{Status: domain.AuthzAuthorized, Subject: token.Subject, Token: token}
}

// ResultError maps a non-authorized result to its sentinel error.
func ResultError(result domain.AuthzResult) error {
	switch result.Status {
	case domain.AuthzAuthorized:
		return nil
	case domain.AuthzExpired:
		return ErrTokenExpired
	case domain.AuthzMissing:
		return ErrTokenMissing
	default:
		return ErrTokenInvalid
	}
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
