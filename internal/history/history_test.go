package history

import (
	"context"
	"testing"
	"time"

	"estate_market_backend/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// propertyRow mirrors the columns of the properties table that history joins on.
type propertyRow struct {
	ID    uint `gorm:"primaryKey"`
	Title string
	City  string
	Price float64
}

func (propertyRow) TableName() string { return "properties" }

func newTestService(t *testing.T) (*ServiceImplementation, *time.Time) {
	t.Helper()
	db, err := database.OpenInMemory(&propertyRow{}, &SearchHistory{}, &ViewingHistory{})
	require.NoError(t, err)
	require.NoError(t, db.Create(&propertyRow{ID: 7, Title: "Loft", City: "Austin", Price: 1200}).Error)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewGORMRepository(db), zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestRecordView_BumpsCountAndTimestamp(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "u1", 7))
	*now = now.Add(time.Hour)
	require.NoError(t, svc.RecordView(ctx, "u1", 7))

	views, err := svc.ListViewingHistory(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].ViewCount)
	assert.True(t, views[0].ViewedAt.Equal(*now))
	require.NotNil(t, views[0].Title)
	assert.Equal(t, "Loft", *views[0].Title)
}

func TestSearchHistory_ListClearAndPrune(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSearch(ctx, "u1", "austin", map[string]interface{}{"location": "austin"}, 3))
	*now = now.Add(40 * 24 * time.Hour)
	require.NoError(t, svc.RecordSearch(ctx, "u1", "dallas", nil, 0))
	require.NoError(t, svc.RecordSearch(ctx, "u2", "houston", nil, 1))

	rows, err := svc.ListSearchHistory(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dallas", rows[0].Query)
	assert.Equal(t, "austin", rows[1].Filters["location"])

	pruned, err := svc.PruneSearchHistory(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	cleared, err := svc.ClearSearchHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	rows, err = svc.ListSearchHistory(ctx, "u2", 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
