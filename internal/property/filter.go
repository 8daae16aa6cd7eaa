package property

import (
	"strings"

	"gorm.io/gorm"
)

// Filter is one predicate of a property query. All filters of a query are ANDed.
// The set of variants is closed: only types in this package implement it.
type Filter interface {
	apply(db *gorm.DB) *gorm.DB
}

// Amenity names a boolean feature column.
type Amenity string

const (
	AmenityParking     Amenity = "parking"
	AmenityPool        Amenity = "pool"
	AmenityGym         Amenity = "gym"
	AmenityPetFriendly Amenity = "pet_friendly"
	AmenityFurnished   Amenity = "furnished"
)

var amenityAliases = map[string]Amenity{
	"parking":      AmenityParking,
	"pool":         AmenityPool,
	"gym":          AmenityGym,
	"pet_friendly": AmenityPetFriendly,
	"petfriendly":  AmenityPetFriendly,
	"furnished":    AmenityFurnished,
}

// ParseAmenity accepts snake_case and camelCase spellings.
func ParseAmenity(s string) (Amenity, bool) {
	a, ok := amenityAliases[strings.ToLower(strings.TrimSpace(s))]
	return a, ok
}

// LocationFilter matches Term case-insensitively as a substring of the street
// address, the city or the state. Any one of the three is enough.
type LocationFilter struct {
	Term string
}

func (f LocationFilter) apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(f.Term)) + "%"
	return db.Where(
		`(LOWER(properties.address) LIKE ? ESCAPE '\' OR LOWER(properties.city) LIKE ? ESCAPE '\' OR LOWER(properties.state) LIKE ? ESCAPE '\')`,
		pattern, pattern, pattern,
	)
}

// PropertyTypeFilter matches the property type exactly.
type PropertyTypeFilter struct {
	Type PropertyType
}

func (f PropertyTypeFilter) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.property_type = ?", f.Type)
}

// PriceRangeFilter bounds the price inclusively. Either side may be nil.
type PriceRangeFilter struct {
	Min *float64
	Max *float64
}

func (f PriceRangeFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Min != nil {
		db = db.Where("properties.price >= ?", *f.Min)
	}
	if f.Max != nil {
		db = db.Where("properties.price <= ?", *f.Max)
	}
	return db
}

// BedroomsFilter requires at least Min bedrooms.
type BedroomsFilter struct {
	Min int
}

func (f BedroomsFilter) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.bedrooms >= ?", f.Min)
}

// BathroomsFilter requires at least Min bathrooms.
type BathroomsFilter struct {
	Min int
}

func (f BathroomsFilter) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.bathrooms >= ?", f.Min)
}

// AmenityFilter requires every listed amenity to be present.
type AmenityFilter struct {
	Amenities []Amenity
}

func (f AmenityFilter) apply(db *gorm.DB) *gorm.DB {
	for _, a := range f.Amenities {
		if col, ok := amenityColumn(a); ok {
			db = db.Where(col+" = ?", true)
		}
	}
	return db
}

// FeaturedFilter keeps featured properties only.
type FeaturedFilter struct{}

func (FeaturedFilter) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.featured = ?", true)
}

// OwnerFilter keeps the properties of one owner.
type OwnerFilter struct {
	OwnerID string
}

func (f OwnerFilter) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.owner_id = ?", f.OwnerID)
}

// IDsFilter keeps the listed property ids. An empty list matches nothing.
type IDsFilter struct {
	IDs []uint
}

func (f IDsFilter) apply(db *gorm.DB) *gorm.DB {
	if len(f.IDs) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("properties.id IN ?", f.IDs)
}

// PropertyQuery describes one page of a property listing. Unavailable
// properties are excluded unless IncludeUnavailable is set.
type PropertyQuery struct {
	Filters            []Filter
	IncludeUnavailable bool
	Limit              int
	Offset             int
}

func amenityColumn(a Amenity) (string, bool) {
	switch a {
	case AmenityParking, AmenityPool, AmenityGym, AmenityPetFriendly, AmenityFurnished:
		return "properties." + string(a), true
	}
	return "", false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
