package contributors

import (
	"context"

	"civix-api/internal/domain/issues"

	"gorm.io/gorm"
)

// Contributor is the public view of a reporter. Contact details stay
// private.
type Contributor struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	IssuesReported int64  `json:"issues_reported"`
	IssuesResolved int64  `json:"issues_resolved"`
}

type Store interface {
	TopContributors(ctx context.Context, limit int) ([]Contributor, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) TopContributors(ctx context.Context, limit int) ([]Contributor, error) {
	var out []Contributor
	err := s.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.name, COUNT(issues.id) AS issues_reported, "+
			"COUNT(issues.id) FILTER (WHERE issues.status = ?) AS issues_resolved", issues.StatusResolved).
		Joins("JOIN issues ON issues.reporter_id = users.id").
		Group("users.id, users.name").
		Order("issues_reported DESC, users.id").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
