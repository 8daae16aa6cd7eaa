package history

import (
	"context"
	"time"

	"estate_market_backend/internal/common"

	"go.uber.org/zap"
)

// Service defines the history operations.
type Service interface {
	RecordSearch(ctx context.Context, userID, query string, filters map[string]interface{}, resultCount int) error
	RecordView(ctx context.Context, userID string, propertyID uint) error
	ListSearchHistory(ctx context.Context, userID string, limit, offset int) ([]SearchHistory, error)
	ClearSearchHistory(ctx context.Context, userID string) (int64, error)
	ListViewingHistory(ctx context.Context, userID string, limit, offset int) ([]ViewingEntry, error)
	PruneSearchHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new history service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("HistoryService"), now: time.Now}
}

func (s *ServiceImplementation) RecordSearch(ctx context.Context, userID, query string, filters map[string]interface{}, resultCount int) error {
	if len(query) > 500 {
		query = query[:500]
	}
	return s.repo.CreateSearch(ctx, &SearchHistory{
		UserID:      userID,
		Query:       query,
		Filters:     common.JSONMap(filters),
		ResultCount: resultCount,
		CreatedAt:   s.now(),
	})
}

func (s *ServiceImplementation) RecordView(ctx context.Context, userID string, propertyID uint) error {
	return s.repo.UpsertView(ctx, userID, propertyID, s.now())
}

func (s *ServiceImplementation) ListSearchHistory(ctx context.Context, userID string, limit, offset int) ([]SearchHistory, error) {
	return s.repo.ListSearches(ctx, userID, common.ClampLimit(limit), offset)
}

func (s *ServiceImplementation) ClearSearchHistory(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.ClearSearches(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Search history cleared", zap.String("userID", userID), zap.Int64("rows", n))
	return n, nil
}

func (s *ServiceImplementation) ListViewingHistory(ctx context.Context, userID string, limit, offset int) ([]ViewingEntry, error) {
	return s.repo.ListViews(ctx, userID, common.ClampLimit(limit), offset)
}

// PruneSearchHistory deletes searches recorded more than olderThan ago.
func (s *ServiceImplementation) PruneSearchHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	n, err := s.repo.DeleteSearchesBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Pruned search history", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	return n, nil
}
