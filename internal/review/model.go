package review

import (
	"time"

	"estate_market_backend/internal/common"
)

// Review is one user's rating of a property. A user holds at most one review per
// property; posting again replaces it.
type Review struct {
	common.BaseModel
	PropertyID uint   `gorm:"not null;uniqueIndex:idx_reviews_user_property,priority:2;index"`
	UserID     string `gorm:"type:varchar(128);not null;uniqueIndex:idx_reviews_user_property,priority:1"`
	Rating     int    `gorm:"not null"`
	Comment    string `gorm:"type:text"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewWithAuthor is a review joined with its author's public profile fields.
type ReviewWithAuthor struct {
	Review
	AuthorName     *string
	AuthorImageURL *string
}

// CreateReviewRequest is the body of POST /api/properties/:id/reviews.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=5000"`
}

type ReviewResponse struct {
	ID             uint      `json:"id"`
	PropertyID     uint      `json:"property_id"`
	UserID         string    `json:"user_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	AuthorName     *string   `json:"author_name,omitempty"`
	AuthorImageURL *string   `json:"author_image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToReviewResponse(r ReviewWithAuthor) ReviewResponse {
	return ReviewResponse{
		ID:             r.ID,
		PropertyID:     r.PropertyID,
		UserID:         r.UserID,
		Rating:         r.Rating,
		Comment:        r.Comment,
		AuthorName:     r.AuthorName,
		AuthorImageURL: r.AuthorImageURL,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ToReviewResponses(list []ReviewWithAuthor) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ToReviewResponse(r))
	}
	return out
}
