package mocks

import (
	"context"

	authapi "civix-api/internal/api/auth"
	"civix-api/internal/domain/users"

	"github.com/stretchr/testify/mock"
)

type UserStore struct {
	mock.Mock
}

var _ authapi.Store = (*UserStore)(nil)

func (m *UserStore) CreateUser(ctx context.Context, u *users.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

func (m *UserStore) FindByID(ctx context.Context, id uint) (*users.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

func (m *UserStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}
