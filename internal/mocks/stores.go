package mocks

import (
	"context"

	adminapi "civix-api/internal/api/admin"
	contributorsapi "civix-api/internal/api/contributors"
	profileapi "civix-api/internal/api/profile"
	"civix-api/internal/domain/users"

	"github.com/stretchr/testify/mock"
)

type ProfileStore struct {
	mock.Mock
}

var _ profileapi.Store = (*ProfileStore)(nil)

func (m *ProfileStore) GetProfile(ctx context.Context, userID uint) (*users.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

func (m *ProfileStore) UpdateProfile(ctx context.Context, userID uint, ch profileapi.Changes) (*users.User, error) {
	args := m.Called(ctx, userID, ch)
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

type ContributorStore struct {
	mock.Mock
}

var _ contributorsapi.Store = (*ContributorStore)(nil)

func (m *ContributorStore) TopContributors(ctx context.Context, limit int) ([]contributorsapi.Contributor, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]contributorsapi.Contributor)
	return list, args.Error(1)
}

type AdminStore struct {
	mock.Mock
}

var _ adminapi.Store = (*AdminStore)(nil)

func (m *AdminStore) Stats(ctx context.Context) (*adminapi.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*adminapi.Stats)
	return s, args.Error(1)
}

func (m *AdminStore) ListUsers(ctx context.Context) ([]users.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]users.User)
	return list, args.Error(1)
}
