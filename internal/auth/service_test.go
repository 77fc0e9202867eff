package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbook/kasbook/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) Insert(ctx context.Context, user User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return User{}, shared.ErrAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	stored := user
	m.users[user.ID] = &stored
	return user, nil
}

func (m *mockRepository) ByEmail(ctx context.Context, email string) (User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *mockRepository) ByID(ctx context.Context, id int64) (User, error) {
	user, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return *user, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "owner@kasbook.id", Name: "Owner", Password: "rahasia-banget"})
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-banget", user.PasswordHash, "password must be stored hashed")

	authed, err := svc.Authenticate(ctx, LoginRequest{Email: "owner@kasbook.id", Password: "rahasia-banget"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "owner@kasbook.id", Name: "Owner", Password: "rahasia-banget"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, LoginRequest{Email: "owner@kasbook.id", Password: "salah"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, LoginRequest{Email: "nobody@kasbook.id", Password: "salah"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "unknown accounts and wrong passwords must be indistinguishable")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "owner@kasbook.id", Name: "Owner", Password: "rahasia-banget"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "owner@kasbook.id", Name: "Dupe", Password: "rahasia-lain"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}
