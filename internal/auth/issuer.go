package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/account-service/internal/domain"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 14 * 24 * time.Hour
)

// TokenConfig holds issuance parameters.
type TokenConfig struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Issuer mints access/refresh token pairs.
type Issuer struct {
	signer     Signer
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer builds an issuer. Non-positive TTLs fall back to defaults and the
// refresh TTL is always kept longer than the access TTL.
func NewIssuer(signer Signer, cfg TokenConfig) *Issuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		cfg.RefreshTTL = max(defaultRefreshTTL, 2*cfg.AccessTTL)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{
		signer:     signer,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}
}

// Issue produces an access and refresh token sharing subject and issue time.
func (i *Issuer) Issue(identity domain.Identity) (domain.TokenPair, error) {
	if !identity.Verified || identity.Subject == "" {
		return domain.TokenPair{}, errors.New("cannot issue tokens for an unverified identity")
	}

	issuedAt := i.timestamp()
	access, accessToken, err := i.sign(identity.Subject, domain.TokenTypeAccess, issuedAt, i.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshToken, err := i.sign(identity.Subject, domain.TokenTypeRefresh, issuedAt, i.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		Access:       access,
		AccessToken:  accessToken,
		Refresh:      refresh,
		RefreshToken: refreshToken,
	}, nil
}

// IssueAccess mints a standalone access token for subject.
func (i *Issuer) IssueAccess(subject string) (string, domain.Token, error) {
	return i.sign(subject, domain.TokenTypeAccess, i.timestamp(), i.accessTTL)
}

// JWT numeric dates carry second precision; truncating here keeps the
// returned domain tokens equal to what a verifier decodes.
func (i *Issuer) timestamp() time.Time {
	return i.now().UTC().Truncate(time.Second)
}

func (i *Issuer) sign(subject string, typ domain.TokenType, issuedAt time.Time, ttl time.Duration) (string, domain.Token, error) {
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	raw, err := i.signer.Sign(claims)
	if err != nil {
		return "", domain.Token{}, err
	}
	return raw, claims.Token(), nil
}
