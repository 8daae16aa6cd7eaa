package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"estate_market_backend/internal/booking"
	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/conversation"
	"estate_market_backend/internal/favorite"
	"estate_market_backend/internal/history"
	"estate_market_backend/internal/middleware"
	"estate_market_backend/internal/platform/database"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/storage"
	"estate_market_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	router *gin.Engine
	propID uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.OpenInMemory(
		&user.User{}, &property.Property{}, &property.PropertyImage{},
		&review.Review{}, &booking.Booking{}, &favorite.Favorite{},
		&history.ViewingHistory{}, &conversation.Conversation{}, &conversation.Message{},
	)
	require.NoError(t, err)

	logger := zap.NewNop()
	cfg := &config.Config{}
	userSvc := user.NewService(user.NewGORMRepository(db), cfg, logger)
	propRepo := property.NewGORMRepository(db)
	reviewSvc := review.NewService(review.NewGORMRepository(db), property.NewOwnerLookup(propRepo), logger)
	propSvc := property.NewService(propRepo, reviewSvc, userSvc, storage.NewService(cfg, nil, logger),
		property.NewIndexer(nil, logger), cfg, logger)

	require.NoError(t, db.Create(&user.User{ID: "admin-1", Roles: common.StringList{common.RoleAdmin}}).Error)
	require.NoError(t, db.Create(&user.User{ID: "owner-1", Roles: common.StringList{}}).Error)
	p := &property.Property{Title: "Loft", Price: 1200, Address: "9 Pine", City: "Austin", State: "TX",
		PropertyType: property.TypeApartment, Available: true, OwnerID: "owner-1"}
	require.NoError(t, db.Create(p).Error)
	hidden := &property.Property{Title: "Shed", Price: 50, Address: "1 Elm", City: "Austin", State: "TX",
		PropertyType: property.TypeHouse, Available: false, OwnerID: "owner-1"}
	require.NoError(t, db.Create(hidden).Error)
	require.NoError(t, db.Create(&review.Review{PropertyID: p.ID, UserID: "admin-1", Rating: 4}).Error)
	for i, status := range []booking.Status{booking.StatusPending, booking.StatusPending, booking.StatusConfirmed} {
		require.NoError(t, db.Create(&booking.Booking{PropertyID: p.ID, UserID: "admin-1",
			Reference: string(rune('a' + i)), ContactName: "A", ContactEmail: "a@example.com", Status: status}).Error)
	}

	router := gin.New()
	auth := func(c *gin.Context) {
		uid := c.GetHeader("X-Test-User")
		usr, err := userSvc.GetUserByID(c.Request.Context(), uid)
		if err != nil {
			common.RespondWithError(c, common.ErrUnauthorized)
			return
		}
		common.SetPrincipal(c, common.Principal{ID: usr.ID, Roles: usr.Roles})
		c.Next()
	}
	NewHandler(NewGORMStatsRepository(db), userSvc, propSvc, logger).
		RegisterRoutes(router.Group("/api"), auth, middleware.RequireRole(common.RoleAdmin))

	return &fixture{db: db, router: router, propID: p.ID}
}

func (f *fixture) do(method, path, uid, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", uid)
	f.router.ServeHTTP(w, req)
	return w
}

func TestStatsRepository_Collect(t *testing.T) {
	f := newFixture(t)
	stats, err := NewGORMStatsRepository(f.db).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(2), stats.Properties)
	assert.Equal(t, int64(1), stats.AvailableProperties)
	assert.Equal(t, int64(0), stats.FeaturedProperties)
	assert.Equal(t, int64(1), stats.Reviews)
	assert.Equal(t, map[string]int64{"pending": 2, "confirmed": 1, "cancelled": 0}, stats.BookingsByStatus)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/admin/stats", "owner-1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/admin/stats", "nobody", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/admin/stats", "admin-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_SetFeatured(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/admin/properties/"+itoa(f.propID)+"/featured", "admin-1", `{"featured":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var stored property.Property
	require.NoError(t, f.db.First(&stored, f.propID).Error)
	assert.True(t, stored.Featured)

	w = f.do(http.MethodPut, "/api/admin/properties/"+itoa(f.propID)+"/featured", "admin-1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdmin_SetRolesAndListUsers(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/admin/users/owner-1/roles", "admin-1", `{"roles":["agent","agent"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var stored user.User
	require.NoError(t, f.db.First(&stored, "id = ?", "owner-1").Error)
	assert.Equal(t, common.StringList{"agent"}, stored.Roles)

	w = f.do(http.MethodPut, "/api/admin/users/owner-1/roles", "admin-1", `{"roles":["superuser"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(http.MethodGet, "/api/admin/users?page=1&page_size=10", "admin-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data       []json.RawMessage  `json:"data"`
		Pagination *common.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	require.NotNil(t, body.Pagination)
}

func TestAdmin_DeleteAnyProperty(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodDelete, "/api/admin/properties/"+itoa(f.propID), "admin-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	require.NoError(t, f.db.Model(&property.Property{}).Where("id = ?", f.propID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&review.Review{}).Where("property_id = ?", f.propID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&booking.Booking{}).Where("property_id = ?", f.propID).Count(&count).Error)
	assert.Zero(t, count)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
