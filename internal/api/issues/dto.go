package issues

import (
	"time"

	"civix-api/internal/domain/issues"
)

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Category    string `json:"category" binding:"omitempty,max=50"`
	Location    string `json:"location" binding:"omitempty,max=255"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type IssueDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	MediaURL    *string   `json:"media_url,omitempty"`
	Status      string    `json:"status"`
	ReporterID  *uint     `json:"reporter_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListResponse struct {
	Issues []IssueDTO `json:"issues"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func toDTO(i issues.Issue) IssueDTO {
	return IssueDTO{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		Location:    i.Location,
		Email:       i.Email,
		Phone:       i.Phone,
		MediaURL:    i.MediaURL,
		Status:      string(i.Status),
		ReporterID:  i.ReporterID,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toDTOs(list []issues.Issue) []IssueDTO {
	out := make([]IssueDTO, 0, len(list))
	for _, i := range list {
		out = append(out, toDTO(i))
	}
	return out
}
