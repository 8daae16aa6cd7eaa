package user

import (
	"time"

	"estate_market_backend/internal/common"
)

// User is the local record of a Firebase identity. ID is the Firebase uid.
type User struct {
	ID                   string            `gorm:"type:varchar(128);primaryKey"`
	Email                *string           `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName          *string           `gorm:"type:varchar(255)"`
	FirstName            *string           `gorm:"type:varchar(100)"`
	LastName             *string           `gorm:"type:varchar(100)"`
	ProfileImageURL      *string           `gorm:"type:text"`
	Phone                *string           `gorm:"type:varchar(50)"`
	Bio                  *string           `gorm:"type:text"`
	IsAgent              bool              `gorm:"not null;default:false"`
	Roles                common.StringList ``
	Preferences          common.JSONMap    ``
	NotificationSettings common.JSONMap    ``
	PrivacySettings      common.JSONMap    ``
	LastLoginAt          *time.Time
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UpdateProfileRequest carries the user-editable profile fields. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName          *string        `json:"display_name" binding:"omitempty,max=255"`
	FirstName            *string        `json:"first_name" binding:"omitempty,max=100"`
	LastName             *string        `json:"last_name" binding:"omitempty,max=100"`
	ProfileImageURL      *string        `json:"profile_image_url" binding:"omitempty,url"`
	Phone                *string        `json:"phone" binding:"omitempty,max=50"`
	Bio                  *string        `json:"bio" binding:"omitempty,max=2000"`
	IsAgent              *bool          `json:"is_agent"`
	Preferences          common.JSONMap `json:"preferences"`
	NotificationSettings common.JSONMap `json:"notification_settings"`
	PrivacySettings      common.JSONMap `json:"privacy_settings"`
}

// SetRolesRequest replaces the role list of a user.
type SetRolesRequest struct {
	Roles []string `json:"roles" binding:"required,dive,oneof=admin agent"`
}

// UserResponse is the full profile returned to the user themself and to admins.
type UserResponse struct {
	ID                   string         `json:"id"`
	Email                *string        `json:"email,omitempty"`
	DisplayName          *string        `json:"display_name,omitempty"`
	FirstName            *string        `json:"first_name,omitempty"`
	LastName             *string        `json:"last_name,omitempty"`
	ProfileImageURL      *string        `json:"profile_image_url,omitempty"`
	Phone                *string        `json:"phone,omitempty"`
	Bio                  *string        `json:"bio,omitempty"`
	IsAgent              bool           `json:"is_agent"`
	Roles                []string       `json:"roles"`
	Preferences          common.JSONMap `json:"preferences,omitempty"`
	NotificationSettings common.JSONMap `json:"notification_settings,omitempty"`
	PrivacySettings      common.JSONMap `json:"privacy_settings,omitempty"`
	LastLoginAt          *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	roles := []string(u.Roles)
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:                   u.ID,
		Email:                u.Email,
		DisplayName:          u.DisplayName,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		ProfileImageURL:      u.ProfileImageURL,
		Phone:                u.Phone,
		Bio:                  u.Bio,
		IsAgent:              u.IsAgent,
		Roles:                roles,
		Preferences:          u.Preferences,
		NotificationSettings: u.NotificationSettings,
		PrivacySettings:      u.PrivacySettings,
		LastLoginAt:          u.LastLoginAt,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
