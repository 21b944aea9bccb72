package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
)

type memoryUserRepo struct {
	users map[string]domain.User
}

func (m *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.Email]; !ok {
		return pgx.ErrNoRows
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app   *fiber.App
	now   time.Time
	repo  *memoryUserRepo
	ready map[string]handlers.Pinger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	srv := &testServer{
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		repo:  &memoryUserRepo{users: map[string]domain.User{}},
		ready: map[string]handlers.Pinger{"postgres": stubPinger{}, "redis": stubPinger{}},
	}

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:              "test-secret",
		AccessTokenTTLMinutes:  15,
		RefreshTokenTTLMinutes: 60,
		BcryptCost:             bcrypt.MinCost,
	}}
	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	svc, err := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: srv.repo,
		Metrics:  metrics,
		Logger:   logger,
		Now:      func() time.Time { return srv.now },
	})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: httptransport.ErrorHandler(logger, metrics)})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("account-service", "test", srv.ready),
		Users:          handlers.NewUsersHandler(svc),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Gate(), metrics),
		Gatherer:       registry,
	})
	srv.app = app
	return srv
}

type envelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Error    *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) signUpAndLogin(t *testing.T) (string, string) {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/users/sign-up", "", map[string]string{
		"email": "a@x.com", "password": "secret1", "nickname": "alice",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Response, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens.AccessToken, tokens.RefreshToken
}

func TestAccountLifecycle(t *testing.T) {
	srv := newTestServer(t)
	access, refresh := srv.signUpAndLogin(t)

	status, env := srv.do(t, http.MethodGet, "/users/me", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"email":"a@x.com","nickname":"alice","is_verified":false}`, string(env.Response))

	status, env = srv.do(t, http.MethodPut, "/users/me", access, map[string]string{"nickname": "alicia"})
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"nickname":"alicia"}`, string(env.Response))

	status, env = srv.do(t, http.MethodGet, "/users/me", refresh, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, env.Success)
	require.Equal(t, "TOKEN_INVALID", env.Error.Code)
}

func TestProtectedRoutesRejectBeforeHandler(t *testing.T) {
	srv := newTestServer(t)
	access, _ := srv.signUpAndLogin(t)

	status, env := srv.do(t, http.MethodGet, "/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "TOKEN_MISSING", env.Error.Code)

	srv.now = srv.now.Add(16 * time.Minute)
	status, env = srv.do(t, http.MethodPut, "/users/me", access, map[string]string{"nickname": "mallory"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "TOKEN_EXPIRED", env.Error.Code)
	require.Equal(t, "alice", srv.repo.users["a@x.com"].Nickname)
}

func TestLoginFailuresShareResponse(t *testing.T) {
	srv := newTestServer(t)
	srv.signUpAndLogin(t)

	status, wrongPassword := srv.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret2",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, unknownEmail := srv.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "b@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, wrongPassword.Error, unknownEmail.Error)
}

func TestSignUpValidationAndConflict(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/users/sign-up", "", map[string]string{
		"email": "nope", "password": "123", "nickname": "x",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	require.Contains(t, env.Error.Details, "email")
	require.Contains(t, env.Error.Details, "password")
	require.Contains(t, env.Error.Details, "nickname")

	srv.signUpAndLogin(t)
	status, env = srv.do(t, http.MethodPost, "/users/sign-up", "", map[string]string{
		"email": "a@x.com", "password": "secret1", "nickname": "alice",
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "CONFLICT", env.Error.Code)
}

func TestSignUpRejectsPasswordOverBcryptLimit(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/users/sign-up", "", map[string]string{
		"email": "a@x.com", "password": strings.Repeat("\U0001F600", 19), "nickname": "alice",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	require.Contains(t, env.Error.Details, "password")
	require.Empty(t, srv.repo.users)
}

func TestReissueEndpoint(t *testing.T) {
	srv := newTestServer(t)
	access, refresh := srv.signUpAndLogin(t)

	status, env := srv.do(t, http.MethodPost, "/users/reissue", "", map[string]string{
		"access_token": access, "refresh_token": refresh,
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "NO_ACTION_NEEDED", env.Error.Code)

	srv.now = srv.now.Add(20 * time.Minute)
	status, env = srv.do(t, http.MethodPost, "/users/reissue", access, map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, status)
	var reissued struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Response, &reissued))

	status, _ = srv.do(t, http.MethodGet, "/users/me", reissued.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	srv.now = srv.now.Add(2 * time.Hour)
	status, env = srv.do(t, http.MethodPost, "/users/reissue", "", map[string]string{
		"access_token": reissued.AccessToken, "refresh_token": refresh,
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "REAUTH_REQUIRED", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	srv.ready["redis"] = stubPinger{err: errors.New("dial tcp: refused")}
	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.signUpAndLogin(t)
	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `account_logins_total{outcome="success"} 1`)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.False(t, env.Success)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}
