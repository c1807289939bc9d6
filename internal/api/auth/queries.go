package auth

import (
	"context"
	"errors"

	"civix-api/internal/domain/users"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

type Store interface {
	CreateUser(ctx context.Context, u *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id uint) (*users.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateUser relies on the unique email index; the connection is opened
// with TranslateError so the violation surfaces as gorm.ErrDuplicatedKey.
func (s *GormStore) CreateUser(ctx context.Context, u *users.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*users.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) first(ctx context.Context, query string, arg any) (*users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
