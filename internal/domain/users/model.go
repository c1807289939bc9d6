package users

import "time"

const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

type User struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"not null;uniqueIndex:idx_users_email"`
	Password string `gorm:"not null"`
	Role     string `gorm:"type:varchar(20);not null;default:'citizen'"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds the optional contact details a citizen can edit.
type Profile struct {
	ID      uint `gorm:"primaryKey"`
	UserID  uint `gorm:"uniqueIndex"`
	Phone   string
	Address string
	Bio     string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
