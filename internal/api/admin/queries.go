package admin

import (
	"context"

	"civix-api/internal/domain/issues"
	"civix-api/internal/domain/users"

	"gorm.io/gorm"
)

type Stats struct {
	TotalUsers       int64            `json:"total_users"`
	TotalIssues      int64            `json:"total_issues"`
	IssuesByStatus   map[string]int64 `json:"issues_by_status"`
	IssuesByCategory map[string]int64 `json:"issues_by_category"`
}

type Store interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context) ([]users.User, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{
		IssuesByStatus:   map[string]int64{},
		IssuesByCategory: map[string]int64{},
	}

	if err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&issues.Issue{}).Count(&stats.TotalIssues).Error; err != nil {
		return nil, err
	}

	type groupCount struct {
		Name  string
		Count int64
	}

	var byStatus []groupCount
	if err := db.Model(&issues.Issue{}).
		Select("status AS name, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.IssuesByStatus[g.Name] = g.Count
	}

	var byCategory []groupCount
	if err := db.Model(&issues.Issue{}).
		Select("category AS name, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, g := range byCategory {
		stats.IssuesByCategory[g.Name] = g.Count
	}

	return stats, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]users.User, error) {
	var list []users.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}
