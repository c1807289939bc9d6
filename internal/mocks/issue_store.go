package mocks

import (
	"context"

	issuesapi "civix-api/internal/api/issues"
	"civix-api/internal/domain/issues"

	"github.com/stretchr/testify/mock"
)

type IssueStore struct {
	mock.Mock
}

var _ issuesapi.Store = (*IssueStore)(nil)

func (m *IssueStore) Create(ctx context.Context, issue *issues.Issue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *IssueStore) List(ctx context.Context, f issuesapi.ListFilter) ([]issues.Issue, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]issues.Issue)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *IssueStore) Get(ctx context.Context, id string) (*issues.Issue, error) {
	args := m.Called(ctx, id)
	issue, _ := args.Get(0).(*issues.Issue)
	return issue, args.Error(1)
}

func (m *IssueStore) UpdateStatus(ctx context.Context, id string, status issues.Status) (*issues.Issue, error) {
	args := m.Called(ctx, id, status)
	issue, _ := args.Get(0).(*issues.Issue)
	return issue, args.Error(1)
}

func (m *IssueStore) SetMediaURL(ctx context.Context, id, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *IssueStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
