package booking

import (
	"context"
	"fmt"
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/shared"

	"github.com/teris-io/shortid"
	"go.uber.org/zap"
)

// Service defines the booking operations.
type Service interface {
	Create(ctx context.Context, userID string, propertyID uint, req CreateBookingRequest) (*Booking, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]Booking, error)
	ListForProperty(ctx context.Context, callerID string, propertyID uint, limit, offset int) ([]Booking, error)
	UpdateStatus(ctx context.Context, callerID string, bookingID uint, status Status) (*Booking, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo            Repository
	properties      shared.PropertyLookup
	logger          *zap.Logger
	generateShortId func() (string, error)
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new booking service.
func NewService(repo Repository, properties shared.PropertyLookup, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:            repo,
		properties:      properties,
		logger:          logger.Named("BookingService"),
		generateShortId: shortid.Generate,
	}
}

// Create records an inquiry by userID. Owners cannot book their own property.
func (s *ServiceImplementation) Create(ctx context.Context, userID string, propertyID uint, req CreateBookingRequest) (*Booking, error) {
	ownerID, err := s.properties.GetPropertyOwnerID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if ownerID == userID {
		return nil, common.ErrForbidden.WithDetails("You cannot book your own property.")
	}

	ref, err := s.generateShortId()
	if err != nil {
		s.logger.Error("generateShortId", zap.Error(err))
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	b := &Booking{
		PropertyID:    propertyID,
		UserID:        userID,
		Reference:     ref,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Message:       req.Message,
		PreferredTime: req.PreferredTime,
		Status:        StatusPending,
	}
	if req.PreferredDate != "" {
		d, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails("preferred_date must be YYYY-MM-DD.")
		}
		b.PreferredDate = &d
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("Booking created", zap.Uint("bookingID", b.ID), zap.String("reference", ref), zap.Uint("propertyID", propertyID))
	return b, nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, userID string, limit, offset int) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID, common.ClampLimit(limit), offset)
}

// ListForProperty lists a property's bookings for its owner.
func (s *ServiceImplementation) ListForProperty(ctx context.Context, callerID string, propertyID uint, limit, offset int) ([]Booking, error) {
	ownerID, err := s.properties.GetPropertyOwnerID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if ownerID != callerID {
		return nil, common.ErrForbidden.WithDetails("Only the property owner can view its bookings.")
	}
	return s.repo.ListByProperty(ctx, propertyID, common.ClampLimit(limit), offset)
}

// UpdateStatus applies a status transition. The property owner may confirm or
// cancel; the inquirer may only cancel.
func (s *ServiceImplementation) UpdateStatus(ctx context.Context, callerID string, bookingID uint, status Status) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.properties.GetPropertyOwnerID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}

	isOwner := ownerID == callerID
	isInquirer := b.UserID == callerID
	switch {
	case isOwner:
	case isInquirer && status == StatusCancelled:
	default:
		return nil, common.ErrForbidden.WithDetails("You cannot change the status of this booking.")
	}

	if !canTransition(b.Status, status) {
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("Cannot move a %s booking to %s.", b.Status, status))
	}
	if err := s.repo.UpdateStatus(ctx, bookingID, b.Status, status); err != nil {
		return nil, err
	}
	b.Status = status
	s.logger.Info("Booking status updated", zap.Uint("bookingID", bookingID), zap.String("status", string(status)))
	return b, nil
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	}
	return false
}
