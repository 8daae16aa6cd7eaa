package property

import (
	"context"
	"errors"
	"fmt"

	"estate_market_backend/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for property data operations.
type Repository interface {
	// List returns one page of properties with review stats and images attached.
	List(ctx context.Context, query PropertyQuery) ([]PropertyWithStats, error)
	FindByID(ctx context.Context, id uint) (*Property, error)
	GetStats(ctx context.Context, id uint) (avg float64, count int64, err error)
	Create(ctx context.Context, p *Property, images []PropertyImage) error
	Update(ctx context.Context, p *Property) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// DeleteCascade removes the property and every dependent row in one
	// transaction. It returns the removed images.
	DeleteCascade(ctx context.Context, id uint) ([]PropertyImage, error)

	ListImages(ctx context.Context, propertyIDs []uint) (map[uint][]PropertyImage, error)
	FindImageByID(ctx context.Context, id uint) (*PropertyImage, error)
	CreateImage(ctx context.Context, img *PropertyImage) error
	DeleteImage(ctx context.Context, id uint) error
	SetPrimaryImage(ctx context.Context, propertyID, imageID uint) error

	// FindInBatches walks every property in id order.
	FindInBatches(ctx context.Context, batchSize int, fn func([]Property) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM property repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context, query PropertyQuery) ([]PropertyWithStats, error) {
	dbQuery := r.db.WithContext(ctx).
		Table("properties").
		Select("properties.*, COALESCE(AVG(reviews.rating), 0) AS average_rating, COUNT(reviews.id) AS review_count").
		Joins("LEFT JOIN reviews ON reviews.property_id = properties.id")

	if !query.IncludeUnavailable {
		dbQuery = dbQuery.Where("properties.available = ?", true)
	}
	for _, f := range query.Filters {
		dbQuery = f.apply(dbQuery)
	}

	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	rows := []PropertyWithStats{}
	err := dbQuery.
		Group("properties.id").
		Order("properties.created_at DESC").Order("properties.id DESC").
		Limit(common.ClampLimit(query.Limit)).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	images, err := r.ListImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		attachImages(&rows[i], images[rows[i].ID])
	}
	return rows, nil
}

// attachImages sets the ordered image list and picks the primary image: the first
// flagged image, else the first image.
func attachImages(p *PropertyWithStats, images []PropertyImage) {
	if images == nil {
		images = []PropertyImage{}
	}
	p.Images = images
	p.PrimaryImage = nil
	for i := range images {
		if images[i].IsPrimary {
			p.PrimaryImage = &images[i]
			return
		}
	}
	if len(images) > 0 {
		p.PrimaryImage = &images[0]
	}
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Property, error) {
	var p Property
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &p, nil
}

func (r *gormRepository) GetStats(ctx context.Context, id uint) (float64, int64, error) {
	var stats struct {
		AverageRating float64
		ReviewCount   int64
	}
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(id) AS review_count").
		Where("property_id = ?", id).
		Scan(&stats).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute review stats: %w", err)
	}
	return stats.AverageRating, stats.ReviewCount, nil
}

func (r *gormRepository) Create(ctx context.Context, p *Property, images []PropertyImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}
		for i := range images {
			images[i].PropertyID = p.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to create property images: %w", err)
			}
		}
		return nil
	})
}

func (r *gormRepository) Update(ctx context.Context, p *Property) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Property{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Property not found.")
	}
	return nil
}

// dependentDeletes lists the statements that clear rows referencing a property,
// children before parents.
var dependentDeletes = []string{
	"DELETE FROM property_images WHERE property_id = ?",
	"DELETE FROM reviews WHERE property_id = ?",
	"DELETE FROM bookings WHERE property_id = ?",
	"DELETE FROM favorites WHERE property_id = ?",
	"DELETE FROM viewing_history WHERE property_id = ?",
	"DELETE FROM messages WHERE conversation_id IN (SELECT id FROM conversations WHERE property_id = ?)",
	"DELETE FROM conversations WHERE property_id = ?",
}

func (r *gormRepository) DeleteCascade(ctx context.Context, id uint) ([]PropertyImage, error) {
	var images []PropertyImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Find(&images).Error; err != nil {
			return fmt.Errorf("failed to load property images: %w", err)
		}
		for _, stmt := range dependentDeletes {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return fmt.Errorf("failed to delete property dependents: %w", err)
			}
		}
		result := tx.Delete(&Property{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Property not found.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *gormRepository) ListImages(ctx context.Context, propertyIDs []uint) (map[uint][]PropertyImage, error) {
	out := make(map[uint][]PropertyImage, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return out, nil
	}
	var images []PropertyImage
	err := r.db.WithContext(ctx).
		Where("property_id IN ?", propertyIDs).
		Order("is_primary DESC").Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list property images: %w", err)
	}
	for _, img := range images {
		out[img.PropertyID] = append(out[img.PropertyID], img)
	}
	return out, nil
}

func (r *gormRepository) FindImageByID(ctx context.Context, id uint) (*PropertyImage, error) {
	var img PropertyImage
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Property image not found.")
		}
		return nil, fmt.Errorf("failed to find property image: %w", err)
	}
	return &img, nil
}

func (r *gormRepository) CreateImage(ctx context.Context, img *PropertyImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if img.IsPrimary {
			if err := clearPrimary(tx, img.PropertyID); err != nil {
				return err
			}
		}
		if err := tx.Create(img).Error; err != nil {
			return fmt.Errorf("failed to create property image: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) DeleteImage(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&PropertyImage{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete property image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Property image not found.")
	}
	return nil
}

func (r *gormRepository) SetPrimaryImage(ctx context.Context, propertyID, imageID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearPrimary(tx, propertyID); err != nil {
			return err
		}
		result := tx.Model(&PropertyImage{}).
			Where("id = ? AND property_id = ?", imageID, propertyID).
			Update("is_primary", true)
		if result.Error != nil {
			return fmt.Errorf("failed to set primary image: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Property image not found.")
		}
		return nil
	})
}

func clearPrimary(tx *gorm.DB, propertyID uint) error {
	err := tx.Model(&PropertyImage{}).
		Where("property_id = ? AND is_primary = ?", propertyID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary image: %w", err)
	}
	return nil
}

func (r *gormRepository) FindInBatches(ctx context.Context, batchSize int, fn func([]Property) error) error {
	var batch []Property
	result := r.db.WithContext(ctx).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	if result.Error != nil {
		return fmt.Errorf("failed to walk properties: %w", result.Error)
	}
	return nil
}
