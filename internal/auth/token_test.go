package auth_test

import (
	"strings"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
)

func TestNewHMACSignerRequiresSecret(t *testing.T) {
	_, err := auth.NewHMACSigner("")
	require.ErrorIs(t, err, auth.ErrSigning)
}

func TestSignParseRoundTrip(t *testing.T) {
	kit := newTokenKit(t)
	pair := kit.login(t, "a@x.com")

	access, err := kit.signer.Parse(pair.Access, domain.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, pair.AccessToken, access.Token())

	refresh, err := kit.signer.Parse(pair.Refresh, domain.TokenTypeRefresh)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, refresh.Token())
}

func TestParseRejectsTokenOfOtherType(t *testing.T) {
	kit := newTokenKit(t)
	pair := kit.login(t, "a@x.com")

	_, err := kit.signer.Parse(pair.Refresh, domain.TokenTypeAccess)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = kit.signer.Parse(pair.Access, domain.TokenTypeRefresh)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestParseRejectsForeignAndTamperedTokens(t *testing.T) {
	kit := newTokenKit(t)
	other := newTokenKitWithSecret(t, "another-secret")
	pair := other.login(t, "a@x.com")

	_, err := kit.signer.Parse(pair.Access, domain.TokenTypeAccess)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)

	own := kit.login(t, "a@x.com")
	parts := strings.Split(own.Access, ".")
	require.Len(t, parts, 3)
	forged := kit.login(t, "mallory@x.com")
	tampered := parts[0] + "." + strings.Split(forged.Access, ".")[1] + "." + parts[2]

	_, err = kit.signer.Parse(tampered, domain.TokenTypeAccess)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = kit.signer.Parse("not-a-token", domain.TokenTypeAccess)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	kit := newTokenKit(t)
	claims := &auth.Claims{
		Type: domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			IssuedAt:  jwt.NewNumericDate(kit.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(kit.clock.Now().Add(accessTTL)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = kit.signer.Parse(raw, domain.TokenTypeAccess)
	require.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestSignUnknownType(t *testing.T) {
	kit := newTokenKit(t)
	_, err := kit.signer.Sign(&auth.Claims{Type: "id"})
	require.ErrorIs(t, err, auth.ErrSigning)
}
