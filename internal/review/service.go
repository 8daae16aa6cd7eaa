package review

import (
	"context"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/shared"

	"go.uber.org/zap"
)

// Service defines the review operations.
type Service interface {
	CreateOrReplace(ctx context.Context, userID string, propertyID uint, req CreateReviewRequest) (*ReviewWithAuthor, error)
	ListForProperty(ctx context.Context, propertyID uint) ([]ReviewWithAuthor, error)
	Delete(ctx context.Context, principal common.Principal, reviewID uint) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	properties shared.PropertyLookup
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new review service.
func NewService(repo Repository, properties shared.PropertyLookup, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		properties: properties,
		logger:     logger.Named("ReviewService"),
	}
}

// CreateOrReplace stores the caller's review of a property. Owners cannot review
// their own listings.
func (s *ServiceImplementation) CreateOrReplace(ctx context.Context, userID string, propertyID uint, req CreateReviewRequest) (*ReviewWithAuthor, error) {
	ownerID, err := s.properties.GetPropertyOwnerID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if ownerID == userID {
		return nil, common.ErrForbidden.WithDetails("You cannot review your own property.")
	}

	rev := &Review{PropertyID: propertyID, UserID: userID, Rating: req.Rating, Comment: req.Comment}
	if err := s.repo.Upsert(ctx, rev); err != nil {
		s.logger.Error("Failed to store review", zap.Error(err), zap.Uint("propertyID", propertyID), zap.String("userID", userID))
		return nil, err
	}
	return s.repo.FindWithAuthor(ctx, rev.ID)
}

// ListForProperty returns a property's reviews, newest first.
func (s *ServiceImplementation) ListForProperty(ctx context.Context, propertyID uint) ([]ReviewWithAuthor, error) {
	return s.repo.ListByProperty(ctx, propertyID)
}

// Delete removes a review. Only its author or an admin may delete it.
func (s *ServiceImplementation) Delete(ctx context.Context, principal common.Principal, reviewID uint) error {
	rev, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != principal.ID && !principal.IsAdmin() {
		return common.ErrForbidden.WithDetails("You can only delete your own reviews.")
	}
	return s.repo.Delete(ctx, reviewID)
}
