package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
)

// Nickname length bounds.
const (
	MinNicknameLength = 2
	MaxNicknameLength = 10
)

// ErrInvalidNickname is returned for nicknames outside the length bounds.
var ErrInvalidNickname = errors.New("nickname must be 2 to 10 characters")

// Outcomes reported to metrics.
const (
	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeUserNotFound       = "user_not_found"
	outcomeInvalidInput       = "invalid_input"
	outcomeReissued           = "reissued"
	outcomeNoActionNeeded     = "no_action_needed"
	outcomeReauthRequired     = "reauth_required"
	outcomeError              = "error"
)

// AuthService coordinates sign-up, login, token reissue and profile access.
type AuthService struct {
	users      repository.UserRepository
	verifier   *auth.CredentialVerifier
	issuer     *auth.Issuer
	gate       *auth.Gate
	reissuer   *auth.Reissuer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
// Credentials serves login lookups and defaults to UserRepo; set it to the
// uncached repository when UserRepo omits password hashes.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Credentials auth.UserFinder
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewAuthService builds the service and its token components.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	signer, err := auth.NewHMACSigner(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	credentials := deps.Credentials
	if credentials == nil {
		credentials = deps.UserRepo
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	issuer := auth.NewIssuer(signer, auth.TokenConfig{
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL(),
		RefreshTTL: cfg.Auth.RefreshTTL(),
		Now:        now,
	})
	gate := auth.NewGate(signer, now)

	return &AuthService{
		users:      deps.UserRepo,
		verifier:   auth.NewCredentialVerifier(credentials),
		issuer:     issuer,
		gate:       gate,
		reissuer:   auth.NewReissuer(gate, issuer),
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        now,
	}, nil
}

// SignUp creates a new, unverified account.
func (s *AuthService) SignUp(ctx context.Context, email, password, nickname string) (*domain.User, error) {
	email = auth.NormalizeEmail(email)
	nickname = strings.TrimSpace(nickname)
	if !auth.ValidEmail(email) || !auth.ValidPasswordLength(password) {
		return nil, auth.ErrInvalidInput
	}
	if err := ValidateNickname(nickname); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("email", email))
	s.publish(ctx, events.NewEvent(events.EventUserSignedUp, email, s.now(), events.UserSignedUpPayload{Nickname: nickname}))
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	identity, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		outcome := loginOutcome(err)
		s.metrics.ObserveLogin(outcome)
		s.logger.Debug("login rejected", zap.String("outcome", outcome))
		return domain.TokenPair{}, err
	}

	pair, err := s.issuer.Issue(identity)
	if err != nil {
		s.metrics.ObserveLogin(outcomeError)
		return domain.TokenPair{}, err
	}

	s.metrics.ObserveLogin(outcomeSuccess)
	s.logger.Info("user logged in", zap.String("email", identity.Subject))
	s.publish(ctx, events.NewEvent(events.EventUserLoggedIn, identity.Subject, pair.AccessToken.IssuedAt, nil))
	return pair, nil
}

// Reissue exchanges an expired access token and a live refresh token for a
// new access token.
func (s *AuthService) Reissue(ctx context.Context, rawAccess, rawRefresh string) (string, domain.Token, error) {
	raw, token, err := s.reissuer.Reissue(rawAccess, rawRefresh)
	switch {
	case err == nil:
		s.metrics.ObserveReissue(outcomeReissued)
	case errors.Is(err, auth.ErrNoActionNeeded):
		s.metrics.ObserveReissue(outcomeNoActionNeeded)
		return "", domain.Token{}, err
	case errors.Is(err, auth.ErrReauthRequired):
		s.metrics.ObserveReissue(outcomeReauthRequired)
		return "", domain.Token{}, err
	default:
		s.metrics.ObserveReissue(outcomeError)
		return "", domain.Token{}, err
	}

	s.logger.Info("access token reissued", zap.String("email", token.Subject), zap.String("token_id", token.ID))
	s.publish(ctx, events.NewEvent(events.EventAccessTokenReissued, token.Subject, token.IssuedAt,
		events.AccessTokenReissuedPayload{TokenID: token.ID, ExpiresAt: token.ExpiresAt}))
	return raw, token, nil
}

// Me returns the account for an authorized subject.
func (s *AuthService) Me(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateNickname changes the nickname of an authorized subject.
func (s *AuthService) UpdateNickname(ctx context.Context, email, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if err := ValidateNickname(nickname); err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, email)
	if err != nil {
		return nil, err
	}

	old := user.Nickname
	user.Nickname = nickname
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventProfileUpdated, email, s.now(),
		events.ProfileUpdatedPayload{OldNickname: old, NewNickname: nickname}))
	return user, nil
}

// Gate exposes the authorization gate for middleware usage.
func (s *AuthService) Gate() *auth.Gate {
	return s.gate
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// ValidateNickname checks the nickname length policy.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(nickname))
	if n < MinNicknameLength || n > MaxNicknameLength {
		return ErrInvalidNickname
	}
	return nil
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return outcomeInvalidCredentials
	case errors.Is(err, auth.ErrUserNotFound):
		return outcomeUserNotFound
	case errors.Is(err, auth.ErrInvalidInput):
		return outcomeInvalidInput
	default:
		return outcomeError
	}
}
