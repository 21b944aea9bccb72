package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// SignUp handles POST /users/sign-up.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	validateEmail(details, req.Email)
	validatePassword(details, req.Password)
	validateNickname(details, req.Nickname)
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid request", details)
	}

	if _, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password, req.Nickname); err != nil {
		return mapAuthError(err)
	}

	return c.Status(http.StatusCreated).JSON(dto.OK("sign-up succeeded"))
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	validateEmail(details, req.Email)
	validatePassword(details, req.Password)
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid request", details)
	}

	pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(dto.OK(dto.TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}))
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Me(c.UserContext(), principal.Subject)
	if err != nil {
		return mapProfileError(err)
	}

	return c.JSON(dto.OK(dto.MeResponse{
		Email:      user.Email,
		Nickname:   user.Nickname,
		IsVerified: user.IsVerified,
	}))
}

// UpdateMe handles PUT /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	validateNickname(details, req.Nickname)
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid request", details)
	}

	user, err := h.auth.UpdateNickname(c.UserContext(), principal.Subject, req.Nickname)
	if err != nil {
		return mapProfileError(err)
	}

	return c.JSON(dto.OK(dto.NicknameResponse{Nickname: user.Nickname}))
}

// Reissue handles POST /users/reissue.
func (h *UsersHandler) Reissue(c *fiber.Ctx) error {
	var req dto.ReissueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AccessToken == "" {
		if raw, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			req.AccessToken = raw
		}
	}

	raw, _, err := h.auth.Reissue(c.UserContext(), req.AccessToken, req.RefreshToken)
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(dto.OK(dto.AccessTokenResponse{AccessToken: raw}))
}

func validateEmail(details map[string]any, email string) {
	if email == "" {
		details["email"] = "email is required"
		return
	}
	if !auth.ValidEmail(auth.NormalizeEmail(email)) {
		details["email"] = "email is not a valid address"
	}
}

func validatePassword(details map[string]any, password string) {
	if password == "" {
		details["password"] = "password is required"
		return
	}
	if !auth.ValidPasswordLength(password) {
		details["password"] = "password must be 6 to 20 characters"
	}
}

func validateNickname(details map[string]any, nickname string) {
	if nickname == "" {
		details["nickname"] = "nickname is required"
		return
	}
	if err := service.ValidateNickname(nickname); err != nil {
		details["nickname"] = err.Error()
	}
}

func mapProfileError(err error) error {
	if errors.Is(err, auth.ErrUserNotFound) {
		return apperrors.NewNotFound("user", nil)
	}
	return mapAuthError(err)
}

// mapAuthError translates service errors into HTTP errors. Unknown emails and
// wrong passwords share one response so callers cannot enumerate accounts.
func mapAuthError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserNotFound):
		return apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)
	case errors.Is(err, auth.ErrInvalidInput):
		return apperrors.NewValidationError("invalid email or password format", nil)
	case errors.Is(err, service.ErrInvalidNickname):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, repository.ErrEmailTaken):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, auth.ErrNoActionNeeded):
		return apperrors.NewDomainError("NO_ACTION_NEEDED", "access token is still valid", http.StatusConflict, nil)
	case errors.Is(err, auth.ErrReauthRequired):
		return apperrors.NewDomainError("REAUTH_REQUIRED", "please log in again", http.StatusUnauthorized, nil)
	case errors.Is(err, auth.ErrTokenExpired):
		return apperrors.NewDomainError("TOKEN_EXPIRED", "access token expired", http.StatusUnauthorized, nil)
	case errors.Is(err, auth.ErrTokenMissing), errors.Is(err, auth.ErrTokenInvalid):
		return apperrors.NewDomainError("TOKEN_INVALID", "invalid token", http.StatusUnauthorized, nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
