package favorite

import (
	"context"
	"fmt"
	"time"

	"estate_market_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for favorite data operations.
type Repository interface {
	Upsert(ctx context.Context, f *Favorite) error
	Delete(ctx context.Context, userID string, propertyID uint) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Favorite, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM favorite repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Upsert(ctx context.Context, f *Favorite) error {
	f.UpdatedAt = time.Now()
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
	}).Create(f).Error
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	var stored Favorite
	if err := db.Where("user_id = ? AND property_id = ?", f.UserID, f.PropertyID).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload favorite: %w", err)
	}
	*f = stored
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, userID string, propertyID uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Favorite not found.")
	}
	return nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Favorite, error) {
	rows := []Favorite{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return rows, nil
}
