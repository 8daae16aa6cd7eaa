package property

import (
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/shared"
)

// PropertyType is the kind of dwelling a listing describes.
type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeCondo     PropertyType = "condo"
	TypeTownhouse PropertyType = "townhouse"
)

// IsValid reports whether t is one of the supported property types.
func (t PropertyType) IsValid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeCondo, TypeTownhouse:
		return true
	}
	return false
}

// Property is a listing owned by exactly one user.
type Property struct {
	common.BaseModel
	Title        string       `gorm:"type:varchar(255);not null"`
	Slug         string       `gorm:"type:varchar(300);index"`
	Description  string       `gorm:"type:text"`
	Price        float64      `gorm:"type:numeric(12,2);not null"`
	Address      string       `gorm:"type:varchar(255);not null"`
	City         string       `gorm:"type:varchar(100);not null;index"`
	State        string       `gorm:"type:varchar(100);not null"`
	ZipCode      string       `gorm:"type:varchar(20)"`
	PropertyType PropertyType `gorm:"type:varchar(20);not null;index"`
	Bedrooms     int          `gorm:"not null"`
	Bathrooms    int          `gorm:"not null"`
	SquareFeet   *int
	YearBuilt    *int
	Parking      bool   `gorm:"not null"`
	Pool         bool   `gorm:"not null"`
	Gym          bool   `gorm:"not null"`
	PetFriendly  bool   `gorm:"not null"`
	Furnished    bool   `gorm:"not null"`
	Available    bool   `gorm:"not null;index"`
	Featured     bool   `gorm:"not null;index"`
	OwnerID      string `gorm:"type:varchar(128);not null;index"`
}

func (Property) TableName() string {
	return "properties"
}

// PropertyImage belongs to one property. StorageKey is set when the image was
// uploaded through the storage adapter.
type PropertyImage struct {
	common.BaseModel
	PropertyID uint    `gorm:"not null;index"`
	URL        string  `gorm:"type:text;not null"`
	StorageKey *string `gorm:"type:varchar(512)"`
	AltText    string  `gorm:"type:varchar(255)"`
	IsPrimary  bool    `gorm:"not null"`
}

func (PropertyImage) TableName() string {
	return "property_images"
}

// PropertyWithStats is a property annotated with its review aggregates and images.
type PropertyWithStats struct {
	Property
	AverageRating float64
	ReviewCount   int64
	Images        []PropertyImage `gorm:"-"`
	PrimaryImage  *PropertyImage  `gorm:"-"`
}

// --- Request DTOs ---

// CreatePropertyRequest is the body of POST /api/properties.
type CreatePropertyRequest struct {
	Title        string       `json:"title" binding:"required,min=3,max=255"`
	Description  string       `json:"description" binding:"max=10000"`
	Price        float64      `json:"price" binding:"required,gt=0"`
	Address      string       `json:"address" binding:"required,max=255"`
	City         string       `json:"city" binding:"required,max=100"`
	State        string       `json:"state" binding:"required,max=100"`
	ZipCode      string       `json:"zip_code" binding:"max=20"`
	PropertyType PropertyType `json:"property_type" binding:"required,oneof=apartment house condo townhouse"`
	Bedrooms     int          `json:"bedrooms" binding:"gte=0,lte=100"`
	Bathrooms    int          `json:"bathrooms" binding:"gte=0,lte=100"`
	SquareFeet   *int         `json:"square_feet" binding:"omitempty,gt=0"`
	YearBuilt    *int         `json:"year_built" binding:"omitempty,gte=1600,lte=2200"`
	Parking      bool         `json:"parking"`
	Pool         bool         `json:"pool"`
	Gym          bool         `json:"gym"`
	PetFriendly  bool         `json:"pet_friendly"`
	Furnished    bool         `json:"furnished"`
	Available    *bool        `json:"available"`
	Images       []ImageInput `json:"images" binding:"omitempty,max=20,dive"`
}

// UpdatePropertyRequest is a partial update. Nil fields keep their stored value.
type UpdatePropertyRequest struct {
	Title        *string       `json:"title" binding:"omitempty,min=3,max=255"`
	Description  *string       `json:"description" binding:"omitempty,max=10000"`
	Price        *float64      `json:"price" binding:"omitempty,gt=0"`
	Address      *string       `json:"address" binding:"omitempty,max=255"`
	City         *string       `json:"city" binding:"omitempty,max=100"`
	State        *string       `json:"state" binding:"omitempty,max=100"`
	ZipCode      *string       `json:"zip_code" binding:"omitempty,max=20"`
	PropertyType *PropertyType `json:"property_type" binding:"omitempty,oneof=apartment house condo townhouse"`
	Bedrooms     *int          `json:"bedrooms" binding:"omitempty,gte=0,lte=100"`
	Bathrooms    *int          `json:"bathrooms" binding:"omitempty,gte=0,lte=100"`
	SquareFeet   *int          `json:"square_feet" binding:"omitempty,gt=0"`
	YearBuilt    *int          `json:"year_built" binding:"omitempty,gte=1600,lte=2200"`
	Parking      *bool         `json:"parking"`
	Pool         *bool         `json:"pool"`
	Gym          *bool         `json:"gym"`
	PetFriendly  *bool         `json:"pet_friendly"`
	Furnished    *bool         `json:"furnished"`
	Available    *bool         `json:"available"`
}

// ImageInput registers an already hosted image.
type ImageInput struct {
	URL       string `json:"url" binding:"required,url"`
	AltText   string `json:"alt_text" binding:"max=255"`
	IsPrimary bool   `json:"is_primary"`
}

// SetFeaturedRequest toggles the featured flag from the admin back-office.
type SetFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// --- Response DTOs ---

type PropertyImageResponse struct {
	ID         uint      `json:"id"`
	PropertyID uint      `json:"property_id"`
	URL        string    `json:"url"`
	AltText    string    `json:"alt_text"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// PropertyResponse is the list and summary representation of a property.
type PropertyResponse struct {
	ID            uint                    `json:"id"`
	Title         string                  `json:"title"`
	Slug          string                  `json:"slug"`
	Description   string                  `json:"description"`
	Price         float64                 `json:"price"`
	Address       string                  `json:"address"`
	City          string                  `json:"city"`
	State         string                  `json:"state"`
	ZipCode       string                  `json:"zip_code"`
	PropertyType  PropertyType            `json:"property_type"`
	Bedrooms      int                     `json:"bedrooms"`
	Bathrooms     int                     `json:"bathrooms"`
	SquareFeet    *int                    `json:"square_feet,omitempty"`
	YearBuilt     *int                    `json:"year_built,omitempty"`
	Parking       bool                    `json:"parking"`
	Pool          bool                    `json:"pool"`
	Gym           bool                    `json:"gym"`
	PetFriendly   bool                    `json:"pet_friendly"`
	Furnished     bool                    `json:"furnished"`
	Available     bool                    `json:"available"`
	Featured      bool                    `json:"featured"`
	OwnerID       string                  `json:"owner_id"`
	AverageRating float64                 `json:"average_rating"`
	ReviewCount   int64                   `json:"review_count"`
	Images        []PropertyImageResponse `json:"images"`
	PrimaryImage  *PropertyImageResponse  `json:"primary_image"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// PropertyDetail is a property with its full neighborhood. Owner is nil when the
// owner row no longer exists.
type PropertyDetail struct {
	PropertyWithStats
	Reviews []review.ReviewWithAuthor
	Owner   *shared.User
}

// PropertyDetailResponse adds reviews and the owner to the summary.
type PropertyDetailResponse struct {
	PropertyResponse
	Reviews []review.ReviewResponse    `json:"reviews"`
	Owner   *shared.PublicUserResponse `json:"owner"`
}

// ToImageResponse converts a PropertyImage model to its DTO.
func ToImageResponse(img PropertyImage) PropertyImageResponse {
	return PropertyImageResponse{
		ID:         img.ID,
		PropertyID: img.PropertyID,
		URL:        img.URL,
		AltText:    img.AltText,
		IsPrimary:  img.IsPrimary,
		CreatedAt:  img.CreatedAt,
	}
}

// ToPropertyResponse converts a PropertyWithStats to its DTO.
func ToPropertyResponse(p PropertyWithStats) PropertyResponse {
	images := make([]PropertyImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ToImageResponse(img))
	}
	var primary *PropertyImageResponse
	if p.PrimaryImage != nil {
		r := ToImageResponse(*p.PrimaryImage)
		primary = &r
	}
	return PropertyResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.ZipCode,
		PropertyType:  p.PropertyType,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		SquareFeet:    p.SquareFeet,
		YearBuilt:     p.YearBuilt,
		Parking:       p.Parking,
		Pool:          p.Pool,
		Gym:           p.Gym,
		PetFriendly:   p.PetFriendly,
		Furnished:     p.Furnished,
		Available:     p.Available,
		Featured:      p.Featured,
		OwnerID:       p.OwnerID,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		Images:        images,
		PrimaryImage:  primary,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPropertyDetailResponse converts a PropertyDetail to its DTO.
func ToPropertyDetailResponse(d *PropertyDetail) PropertyDetailResponse {
	return PropertyDetailResponse{
		PropertyResponse: ToPropertyResponse(d.PropertyWithStats),
		Reviews:          review.ToReviewResponses(d.Reviews),
		Owner:            shared.ToPublicUserResponse(d.Owner),
	}
}

// ToPropertyResponses converts a page of properties.
func ToPropertyResponses(list []PropertyWithStats) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPropertyResponse(p))
	}
	return out
}
