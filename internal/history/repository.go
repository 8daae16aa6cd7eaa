package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for history data operations.
type Repository interface {
	CreateSearch(ctx context.Context, entry *SearchHistory) error
	ListSearches(ctx context.Context, userID string, limit, offset int) ([]SearchHistory, error)
	ClearSearches(ctx context.Context, userID string) (int64, error)
	DeleteSearchesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// UpsertView records a view, bumping view_count when the pair exists.
	UpsertView(ctx context.Context, userID string, propertyID uint, at time.Time) error
	ListViews(ctx context.Context, userID string, limit, offset int) ([]ViewingEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM history repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateSearch(ctx context.Context, entry *SearchHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (r *gormRepository) ListSearches(ctx context.Context, userID string, limit, offset int) ([]SearchHistory, error) {
	rows := []SearchHistory{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ClearSearches(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&SearchHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear search history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) DeleteSearchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&SearchHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune search history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) UpsertView(ctx context.Context, userID string, propertyID uint, at time.Time) error {
	entry := &ViewingHistory{UserID: userID, PropertyID: propertyID, ViewedAt: at, ViewCount: 1}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"viewed_at":  at,
			"view_count": gorm.Expr("viewing_history.view_count + 1"),
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

func (r *gormRepository) ListViews(ctx context.Context, userID string, limit, offset int) ([]ViewingEntry, error) {
	rows := []ViewingEntry{}
	err := r.db.WithContext(ctx).
		Table("viewing_history").
		Select("viewing_history.*, properties.title AS title, properties.city AS city, properties.price AS price").
		Joins("LEFT JOIN properties ON properties.id = viewing_history.property_id").
		Where("viewing_history.user_id = ?", userID).
		Order("viewing_history.viewed_at DESC").Order("viewing_history.id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list viewing history: %w", err)
	}
	return rows, nil
}
