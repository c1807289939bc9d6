package profile

import "civix-api/internal/domain/users"

type UpdateRequest struct {
	Name    string `json:"name" binding:"omitempty,max=100"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Address string `json:"address" binding:"omitempty,max=255"`
	Bio     string `json:"bio" binding:"omitempty,max=2000"`
}

type ProfileDTO struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Bio     string `json:"bio"`
}

func toDTO(u users.User) ProfileDTO {
	dto := ProfileDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Profile != nil {
		dto.Phone = u.Profile.Phone
		dto.Address = u.Profile.Address
		dto.Bio = u.Profile.Bio
	}
	return dto
}
