package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/domain"
)

// UserFinder is the read side of the user store.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialVerifier checks email/password pairs against stored users.
type CredentialVerifier struct {
	users   UserFinder
	compare func(hashed, plain string) error
}

// NewCredentialVerifier constructs a verifier using bcrypt comparison.
func NewCredentialVerifier(users UserFinder) *CredentialVerifier {
	return &CredentialVerifier{users: users, compare: ComparePassword}
}

// Verify returns the identity for a matching email/password pair.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (domain.Identity, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) || password == "" {
		return domain.Identity{}, ErrInvalidInput
	}

	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, ErrUserNotFound
		}
		return domain.Identity{}, fmt.Errorf("find user: %w", err)
	}

	if err := v.compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("compare password: %w", err)
	}

	return domain.Identity{Subject: user.Email, Verified: true}, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare, well formed address.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email, "@")
}
