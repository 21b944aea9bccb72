package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
)

const (
	testSecret = "test-secret"
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type tokenKit struct {
	clock    *fakeClock
	signer   *auth.HMACSigner
	issuer   *auth.Issuer
	gate     *auth.Gate
	reissuer *auth.Reissuer
}

func newTokenKit(t *testing.T) *tokenKit {
	t.Helper()
	return newTokenKitWithSecret(t, testSecret)
}

func newTokenKitWithSecret(t *testing.T, secret string) *tokenKit {
	t.Helper()

	clock := newFakeClock()
	signer, err := auth.NewHMACSigner(secret)
	require.NoError(t, err)

	issuer := auth.NewIssuer(signer, auth.TokenConfig{
		Issuer:     "account-service",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        clock.Now,
	})
	gate := auth.NewGate(signer, clock.Now)
	return &tokenKit{
		clock:    clock,
		signer:   signer,
		issuer:   issuer,
		gate:     gate,
		reissuer: auth.NewReissuer(gate, issuer),
	}
}

func (k *tokenKit) login(t *testing.T, subject string) domain.TokenPair {
	t.Helper()
	pair, err := k.issuer.Issue(domain.Identity{Subject: subject, Verified: true})
	require.NoError(t, err)
	return pair
}

type memoryUsers struct {
	users map[string]domain.User
	err   error
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

type failingSigner struct{}

func (failingSigner) Sign(*auth.Claims) (string, error) {
	return "", errors.Join(auth.ErrSigning, errors.New("hsm unavailable"))
}

func (failingSigner) Parse(string, domain.TokenType) (*auth.Claims, error) {
	return nil, auth.ErrTokenInvalid
}
