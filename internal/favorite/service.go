package favorite

import (
	"context"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/shared"

	"go.uber.org/zap"
)

// PropertyLister loads property summaries by id.
type PropertyLister interface {
	ListByIDs(ctx context.Context, ids []uint) ([]property.PropertyWithStats, error)
}

// Service defines the favorite operations.
type Service interface {
	Add(ctx context.Context, userID string, propertyID uint, note string) (*Favorite, error)
	Remove(ctx context.Context, userID string, propertyID uint) error
	ListMine(ctx context.Context, userID string, limit, offset int) ([]FavoriteWithProperty, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	lookup     shared.PropertyLookup
	properties PropertyLister
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new favorite service.
func NewService(repo Repository, lookup shared.PropertyLookup, properties PropertyLister, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		lookup:     lookup,
		properties: properties,
		logger:     logger.Named("FavoriteService"),
	}
}

// Add saves a property for the user, replacing the note of an existing favorite.
func (s *ServiceImplementation) Add(ctx context.Context, userID string, propertyID uint, note string) (*Favorite, error) {
	if _, err := s.lookup.GetPropertyOwnerID(ctx, propertyID); err != nil {
		return nil, err
	}
	f := &Favorite{UserID: userID, PropertyID: propertyID, Note: note}
	if err := s.repo.Upsert(ctx, f); err != nil {
		s.logger.Error("Failed to save favorite", zap.Error(err), zap.String("userID", userID), zap.Uint("propertyID", propertyID))
		return nil, err
	}
	return f, nil
}

func (s *ServiceImplementation) Remove(ctx context.Context, userID string, propertyID uint) error {
	return s.repo.Delete(ctx, userID, propertyID)
}

// ListMine returns the user's favorites with property summaries, newest first.
func (s *ServiceImplementation) ListMine(ctx context.Context, userID string, limit, offset int) ([]FavoriteWithProperty, error) {
	favs, err := s.repo.ListByUser(ctx, userID, common.ClampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []FavoriteWithProperty{}, nil
	}
	ids := make([]uint, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID
	}
	props, err := s.properties.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]property.PropertyWithStats, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	out := make([]FavoriteWithProperty, 0, len(favs))
	for _, f := range favs {
		p, ok := byID[f.PropertyID]
		if !ok {
			continue
		}
		out = append(out, FavoriteWithProperty{Favorite: f, Property: p})
	}
	return out, nil
}
