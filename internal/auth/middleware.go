package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Subject string
	Token   domain.Token
}

// AuthzObserver receives every gate decision.
type AuthzObserver interface {
	ObserveAuthz(status domain.AuthzStatus)
}

// AuthMiddleware validates bearer tokens before protected handlers run.
type AuthMiddleware struct {
	gate     *Gate
	observer AuthzObserver
}

// NewAuthMiddleware constructs middleware. observer may be nil.
func NewAuthMiddleware(gate *Gate, observer AuthzObserver) *AuthMiddleware {
	return &AuthMiddleware{gate: gate, observer: observer}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	result := m.gate.AuthorizeHeader(c.Get(fiber.HeaderAuthorization))
	if m.observer != nil {
		m.observer.ObserveAuthz(result.Status)
	}

	switch result.Status {
	case domain.AuthzAuthorized:
	case domain.AuthzMissing:
		return apperrors.NewDomainError("TOKEN_MISSING", "missing authorization header", http.StatusUnauthorized, nil)
	case domain.AuthzExpired:
		return apperrors.NewDomainError("TOKEN_EXPIRED", "access token expired", http.StatusUnauthorized, nil)
	default:
		return apperrors.NewDomainError("TOKEN_INVALID", "invalid token", http.StatusUnauthorized, nil)
	}

	c.Locals(principalKey, &Principal{Subject: result.Subject, Token: result.Token})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
