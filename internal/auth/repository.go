package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kasbook/kasbook/internal/shared"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	Insert(ctx context.Context, user User) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores a new user.
func (r *PGRepository) Insert(ctx context.Context, user User) (User, error) {
	const query = `INSERT INTO users (email, name, password_hash, created_at)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash, time.Now()).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if shared.UniqueViolation(err) {
			return User{}, shared.ErrAlreadyExists
		}
		return User{}, err
	}
	return user, nil
}

// ByEmail fetches a user by email.
func (r *PGRepository) ByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`
	return r.scan(r.pool.QueryRow(ctx, query, email))
}

// ByID fetches a user by id.
func (r *PGRepository) ByID(ctx context.Context, id int64) (User, error) {
	const query = `SELECT id, email, name, password_hash, created_at FROM users WHERE id=$1`
	return r.scan(r.pool.QueryRow(ctx, query, id))
}

func (r *PGRepository) scan(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
