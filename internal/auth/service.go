package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kasbook/kasbook/internal/shared"
)

// Service provides authentication business logic.
type Service struct {
	repo Repository
}

// NewService constructs an auth service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	return s.repo.Insert(ctx, user)
}

// Authenticate verifies credentials. A missing account and a wrong password
// return the same error so login probing cannot tell them apart.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (User, error) {
	user, err := s.repo.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// UserByID loads an account by id.
func (s *Service) UserByID(ctx context.Context, id int64) (User, error) {
	return s.repo.ByID(ctx, id)
}
