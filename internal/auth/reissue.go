package auth

import (
	"github.com/spec-kit/account-service/internal/domain"
)

// Reissuer exchanges an expired access token plus a live refresh token for a
// new access token. Refresh tokens are not rotated.
type Reissuer struct {
	gate   *Gate
	issuer *Issuer
}

// NewReissuer wires the reissue flow.
func NewReissuer(gate *Gate, issuer *Issuer) *Reissuer {
	return &Reissuer{gate: gate, issuer: issuer}
}

// Reissue returns a fresh access token, ErrNoActionNeeded when the access
// token is still usable, or ErrReauthRequired when the caller must log in.
func (r *Reissuer) Reissue(rawAccess, rawRefresh string) (string, domain.Token, error) {
	access := r.gate.evaluate(rawAccess, domain.TokenTypeAccess)
	switch access.Status {
	case domain.AuthzAuthorized:
		return "", domain.Token{}, ErrNoActionNeeded
	case domain.AuthzExpired:
	default:
		return "", domain.Token{}, ErrReauthRequired
	}

	refresh := r.gate.evaluate(rawRefresh, domain.TokenTypeRefresh)
	if refresh.Status != domain.AuthzAuthorized {
		return "", domain.Token{}, ErrReauthRequired
	}
	// a refresh token only renews sessions of its own subject
	if refresh.Subject != access.Subject {
		return "", domain.Token{}, ErrReauthRequired
	}

	return r.issuer.IssueAccess(access.Subject)
}
