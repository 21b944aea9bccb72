package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/domain"
)

const userCachePrefix = "account:user:"

// cachedUser is the cache projection of domain.User. It has no password
// hash field so credential material never leaves Postgres.
type cachedUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Nickname   string    `json:"nickname"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type cachedUserRepository struct {
	next   UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository serves GetByEmail from Redis and falls back to next.
// Users returned by it carry no PasswordHash, so credential checks must read
// from next directly. Cache failures are logged and never surface to
// callers. A nil client or a non-positive ttl disables caching.
func NewCachedUserRepository(next UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) UserRepository {
	if client == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedUserRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *cachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.next.Create(ctx, user)
}

func (r *cachedUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.next.Update(ctx, user); err != nil {
		return err
	}
	if err := r.client.Del(ctx, userCacheKey(user.Email)).Err(); err != nil {
		r.logger.Warn("user cache invalidate failed", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

func (r *cachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := userCacheKey(email)

	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if user, err := decodeCachedUser(payload); err == nil {
			return user, nil
		}
		r.logger.Warn("user cache entry corrupt", zap.String("email", email))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("user cache read failed", zap.String("email", email), zap.Error(err))
	}

	user, err := r.next.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if payload, err := encodeCachedUser(user); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("user cache write failed", zap.String("email", email), zap.Error(err))
		}
	}

	profile := *user
	profile.PasswordHash = ""
	return &profile, nil
}

func encodeCachedUser(user *domain.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:         user.ID,
		Email:      user.Email,
		Nickname:   user.Nickname,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	})
}

func decodeCachedUser(payload []byte) (*domain.User, error) {
	var entry cachedUser
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:         entry.ID,
		Email:      entry.Email,
		Nickname:   entry.Nickname,
		IsVerified: entry.IsVerified,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

func userCacheKey(email string) string {
	return userCachePrefix + email
}
