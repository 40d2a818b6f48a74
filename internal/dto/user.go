package dto

import (
	"time"

	"github.com/yukikurage/board-collab-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64              `json:"id"`
	Name  string              `json:"name"`
	Email *string             `json:"email,omitempty"`
	Phone *string             `json:"phone,omitempty"`
	Role  models.PlatformRole `json:"role,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User      UserDTO   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToPublicUserDTO omits the platform role for views shown to other users
func ToPublicUserDTO(user models.User) UserDTO {
	dto := ToUserDTO(user)
	dto.Role = ""
	return dto
}
