package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_market_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for review data operations.
type Repository interface {
	// Upsert stores r, replacing the rating and comment of an existing review by
	// the same user for the same property. r is reloaded from the database.
	Upsert(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	FindWithAuthor(ctx context.Context, id uint) (*ReviewWithAuthor, error)
	ListByProperty(ctx context.Context, propertyID uint) ([]ReviewWithAuthor, error)
	Delete(ctx context.Context, id uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM review repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Upsert(ctx context.Context, rev *Review) error {
	now := time.Now()
	rev.UpdatedAt = now
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = now
	}
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(rev).Error
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	// On conflict the returned id is driver dependent, so read the row back.
	var stored Review
	if err := db.Where("user_id = ? AND property_id = ?", rev.UserID, rev.PropertyID).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload review: %w", err)
	}
	*rev = stored
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Review, error) {
	var rev Review
	if err := r.db.WithContext(ctx).First(&rev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Review not found.")
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &rev, nil
}

func (r *gormRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, users.display_name AS author_name, users.profile_image_url AS author_image_url").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

func (r *gormRepository) FindWithAuthor(ctx context.Context, id uint) (*ReviewWithAuthor, error) {
	var rows []ReviewWithAuthor
	if err := r.withAuthor(ctx).Where("reviews.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound.WithDetails("Review not found.")
	}
	return &rows[0], nil
}

func (r *gormRepository) ListByProperty(ctx context.Context, propertyID uint) ([]ReviewWithAuthor, error) {
	rows := []ReviewWithAuthor{}
	err := r.withAuthor(ctx).
		Where("reviews.property_id = ?", propertyID).
		Order("reviews.created_at DESC").Order("reviews.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Review{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Review not found.")
	}
	return nil
}
