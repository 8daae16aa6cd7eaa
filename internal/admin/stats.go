package admin

import (
	"context"
	"fmt"

	"estate_market_backend/internal/booking"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/user"

	"gorm.io/gorm"
)

// Stats summarizes marketplace activity for the back-office dashboard.
type Stats struct {
	Users               int64            `json:"users"`
	Properties          int64            `json:"properties"`
	AvailableProperties int64            `json:"available_properties"`
	FeaturedProperties  int64            `json:"featured_properties"`
	Reviews             int64            `json:"reviews"`
	BookingsByStatus    map[string]int64 `json:"bookings_by_status"`
}

// StatsRepository reads aggregate counts.
type StatsRepository interface {
	Collect(ctx context.Context) (*Stats, error)
}

type gormStatsRepository struct {
	db *gorm.DB
}

// NewGORMStatsRepository creates a StatsRepository backed by GORM.
func NewGORMStatsRepository(db *gorm.DB) StatsRepository {
	return &gormStatsRepository{db: db}
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *gormStatsRepository) Collect(ctx context.Context) (*Stats, error) {
	db := r.db.WithContext(ctx)
	stats := &Stats{
		BookingsByStatus: map[string]int64{
			string(booking.StatusPending):   0,
			string(booking.StatusConfirmed): 0,
			string(booking.StatusCancelled): 0,
		},
	}

	if err := db.Model(&user.User{}).Count(&stats.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&property.Property{}).Count(&stats.Properties).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if err := db.Model(&property.Property{}).Where("available = ?", true).Count(&stats.AvailableProperties).Error; err != nil {
		return nil, fmt.Errorf("failed to count available properties: %w", err)
	}
	if err := db.Model(&property.Property{}).Where("featured = ?", true).Count(&stats.FeaturedProperties).Error; err != nil {
		return nil, fmt.Errorf("failed to count featured properties: %w", err)
	}
	if err := db.Model(&review.Review{}).Count(&stats.Reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var rows []statusCount
	err := db.Model(&booking.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	for _, row := range rows {
		stats.BookingsByStatus[row.Status] = row.Count
	}
	return stats, nil
}
