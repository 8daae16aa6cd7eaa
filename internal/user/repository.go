package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/platform/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for user data operations.
type Repository interface {
	// Create inserts u unless a row with the same id exists. created is false on conflict.
	Create(ctx context.Context, u *User) (created bool, err error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, u *User) (bool, error) {
	normalizeEmail(u)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(u)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return false, common.ErrConflict.WithDetails("A user with this email already exists.")
		}
		return false, fmt.Errorf("failed to create user: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *gormRepository) Update(ctx context.Context, u *User) error {
	normalizeEmail(u)
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found.")
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	var (
		users []User
		total int64
	)
	q := r.db.WithContext(ctx).Model(&User{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func normalizeEmail(u *User) {
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
}
