package issues

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

const CategoryOther = "other"

// Issue is a problem reported by a citizen. ReporterID is nil for
// anonymous reports.
type Issue struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text;not null"`
	Category    string `gorm:"type:varchar(50);not null;default:'other';index"`
	Location    string
	Email       string
	Phone       string
	MediaURL    *string
	Status      Status `gorm:"type:varchar(20);not null;default:'pending';index"`

	ReporterID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
