package issues

import (
	"context"
	"errors"

	"civix-api/internal/domain/issues"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("issue not found")

type ListFilter struct {
	Status   issues.Status
	Category string
	Limit    int
	Offset   int
}

type Store interface {
	Create(ctx context.Context, issue *issues.Issue) error
	List(ctx context.Context, f ListFilter) ([]issues.Issue, int64, error)
	Get(ctx context.Context, id string) (*issues.Issue, error)
	UpdateStatus(ctx context.Context, id string, status issues.Status) (*issues.Issue, error)
	SetMediaURL(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, issue *issues.Issue) error {
	return s.db.WithContext(ctx).Create(issue).Error
}

func (s *GormStore) List(ctx context.Context, f ListFilter) ([]issues.Issue, int64, error) {
	q := s.db.WithContext(ctx).Model(&issues.Issue{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []issues.Issue
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (s *GormStore) Get(ctx context.Context, id string) (*issues.Issue, error) {
	var issue issues.Issue
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id string, status issues.Status) (*issues.Issue, error) {
	res := s.db.WithContext(ctx).Model(&issues.Issue{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *GormStore) SetMediaURL(ctx context.Context, id, url string) error {
	res := s.db.WithContext(ctx).Model(&issues.Issue{}).Where("id = ?", id).Update("media_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&issues.Issue{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
