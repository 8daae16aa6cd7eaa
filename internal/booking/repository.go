package booking

import (
	"context"
	"errors"
	"fmt"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/platform/database"

	"gorm.io/gorm"
)

// Repository defines the interface for booking data operations.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id uint) (*Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Booking, error)
	ListByProperty(ctx context.Context, propertyID uint, limit, offset int) ([]Booking, error)
	UpdateStatus(ctx context.Context, id uint, from, to Status) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM booking repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, b *Booking) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Booking reference collision, please retry.")
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Booking, error) {
	var b Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Booking not found.")
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &b, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Booking, error) {
	return r.list(ctx, r.db.Where("user_id = ?", userID), limit, offset)
}

func (r *gormRepository) ListByProperty(ctx context.Context, propertyID uint, limit, offset int) ([]Booking, error) {
	return r.list(ctx, r.db.Where("property_id = ?", propertyID), limit, offset)
}

func (r *gormRepository) list(ctx context.Context, scope *gorm.DB, limit, offset int) ([]Booking, error) {
	rows := []Booking{}
	err := scope.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return rows, nil
}

// UpdateStatus moves a booking from one status to another. The update only
// applies while the row still holds from, so concurrent transitions cannot both win.
func (r *gormRepository) UpdateStatus(ctx context.Context, id uint, from, to Status) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrConflict.WithDetails("Booking status changed concurrently.")
	}
	return nil
}
