package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

const uniqueViolation = "23505"

var (
	// ErrEmailTaken is returned when an account already uses the email.
	ErrEmailTaken = errors.New("email already registered")

	errNoPool = errors.New("postgres pool not configured")
)

// UserRepository defines persistence access for accounts. Lookups that find
// nothing return pgx.ErrNoRows. Update writes profile fields only; the
// password hash is set once by Create.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if r.pool == nil {
		return errNoPool
	}

	const query = `
        INSERT INTO users (email, password_hash, nickname, is_verified)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.IsVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if r.pool == nil {
		return errNoPool
	}

	const query = `
        UPDATE users SET nickname=$1, is_verified=$2, updated_at=NOW()
        WHERE email=$3
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Nickname,
		user.IsVerified,
		user.Email,
	).Scan(&user.UpdatedAt)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.pool == nil {
		return nil, errNoPool
	}

	const query = `
        SELECT id, email, password_hash, nickname, is_verified, created_at, updated_at
        FROM users WHERE email=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Nickname,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

