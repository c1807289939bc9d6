package profile

import (
	"context"
	"errors"

	"civix-api/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("profile not found")

// Changes carries the editable fields; an empty Name keeps the current one.
type Changes struct {
	Name    string
	Phone   string
	Address string
	Bio     string
}

type Store interface {
	GetProfile(ctx context.Context, userID uint) (*users.User, error)
	UpdateProfile(ctx context.Context, userID uint, ch Changes) (*users.User, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetProfile(ctx context.Context, userID uint) (*users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Preload("Profile").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, userID uint, ch Changes) (*users.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ch.Name != "" {
			res := tx.Model(&users.User{}).Where("id = ?", userID).Update("name", ch.Name)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}

		p := users.Profile{UserID: userID, Phone: ch.Phone, Address: ch.Address, Bio: ch.Bio}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"phone", "address", "bio", "updated_at"}),
		}).Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}
