package favorite

import (
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/property"
)

// Favorite marks a property as saved by a user. The pair is unique; saving again
// updates the note.
type Favorite struct {
	common.BaseModel
	UserID     string `gorm:"type:varchar(128);not null;uniqueIndex:idx_favorites_user_property,priority:1"`
	PropertyID uint   `gorm:"not null;uniqueIndex:idx_favorites_user_property,priority:2;index"`
	Note       string `gorm:"type:text"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// AddFavoriteRequest is the optional body of POST /api/properties/:id/favorite.
type AddFavoriteRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

// FavoriteWithProperty pairs a favorite with the property summary.
type FavoriteWithProperty struct {
	Favorite
	Property property.PropertyWithStats
}

type FavoriteResponse struct {
	ID         uint                       `json:"id"`
	PropertyID uint                       `json:"property_id"`
	Note       string                     `json:"note"`
	CreatedAt  time.Time                  `json:"created_at"`
	Property   *property.PropertyResponse `json:"property,omitempty"`
}

func ToFavoriteResponse(f Favorite) FavoriteResponse {
	return FavoriteResponse{ID: f.ID, PropertyID: f.PropertyID, Note: f.Note, CreatedAt: f.CreatedAt}
}

func ToFavoriteResponses(list []FavoriteWithProperty) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(list))
	for _, f := range list {
		r := ToFavoriteResponse(f.Favorite)
		p := property.ToPropertyResponse(f.Property)
		r.Property = &p
		out = append(out, r)
	}
	return out
}
