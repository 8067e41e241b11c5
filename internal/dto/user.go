package dto

import "github.com/workbridg/workbridg-web/internal/models"

// UserDTO represents the signed-in user in API responses
type UserDTO struct {
	ID              string              `json:"id"`
	Username        string              `json:"username"`
	Email           string              `json:"email,omitempty"`
	FullName        string              `json:"full_name,omitempty"`
	Role            models.Role         `json:"role"`
	Avatar          string              `json:"avatar,omitempty"`
	DetailsComplete bool                `json:"details_complete"`
	Dashboard       string              `json:"dashboard"`
	Details         *models.UserDetails `json:"details,omitempty"`
}

// PublicProfileDTO is what anyone can see about a user
type PublicProfileDTO struct {
	Username string              `json:"username"`
	FullName string              `json:"full_name,omitempty"`
	Role     models.Role         `json:"role"`
	Avatar   string              `json:"avatar,omitempty"`
	Details  *models.UserDetails `json:"details,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FullName:        user.FullName,
		Role:            user.Role,
		Avatar:          user.Avatar,
		DetailsComplete: user.DetailsComplete,
		Dashboard:       user.Role.DashboardPath(),
		Details:         user.Details,
	}
}

// ToPublicProfileDTO strips contact data from a user
func ToPublicProfileDTO(user models.User) PublicProfileDTO {
	return PublicProfileDTO{
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		Avatar:   user.Avatar,
		Details:  user.Details,
	}
}
