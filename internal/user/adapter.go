package user

import (
	"estate_market_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:              dbUser.ID,
		Email:           dbUser.Email,
		DisplayName:     dbUser.DisplayName,
		FirstName:       dbUser.FirstName,
		LastName:        dbUser.LastName,
		ProfileImageURL: dbUser.ProfileImageURL,
		Phone:           dbUser.Phone,
		Bio:             dbUser.Bio,
		IsAgent:         dbUser.IsAgent,
		Roles:           append([]string(nil), dbUser.Roles...),
		CreatedAt:       dbUser.CreatedAt,
		UpdatedAt:       dbUser.UpdatedAt,
	}
}

// applyProfileUpdate copies the supplied fields of req onto dbUser.
func applyProfileUpdate(req UpdateProfileRequest, dbUser *User) {
	if req.DisplayName != nil {
		dbUser.DisplayName = req.DisplayName
	}
	if req.FirstName != nil {
		dbUser.FirstName = req.FirstName
	}
	if req.LastName != nil {
		dbUser.LastName = req.LastName
	}
	if req.ProfileImageURL != nil {
		dbUser.ProfileImageURL = req.ProfileImageURL
	}
	if req.Phone != nil {
		dbUser.Phone = req.Phone
	}
	if req.Bio != nil {
		dbUser.Bio = req.Bio
	}
	if req.IsAgent != nil {
		dbUser.IsAgent = *req.IsAgent
	}
	if req.Preferences != nil {
		dbUser.Preferences = req.Preferences
	}
	if req.NotificationSettings != nil {
		dbUser.NotificationSettings = req.NotificationSettings
	}
	if req.PrivacySettings != nil {
		dbUser.PrivacySettings = req.PrivacySettings
	}
}
