package shared

import (
	"time"
)

// PublicUserResponse is the subset of a user profile shown to other users,
// e.g. the owner block of a property.
type PublicUserResponse struct {
	ID              string    `json:"id"`
	DisplayName     *string   `json:"display_name,omitempty"`
	FirstName       *string   `json:"first_name,omitempty"`
	LastName        *string   `json:"last_name,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	IsAgent         bool      `json:"is_agent"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToPublicUserResponse converts a shared.User to a PublicUserResponse DTO.
func ToPublicUserResponse(u *User) *PublicUserResponse {
	if u == nil {
		return nil
	}
	return &PublicUserResponse{
		ID:              u.ID,
		DisplayName:     u.DisplayName,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Email:           u.Email,
		Phone:           u.Phone,
		IsAgent:         u.IsAgent,
		CreatedAt:       u.CreatedAt,
	}
}
