package property

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/review"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) RecordSearch(ctx context.Context, userID, query string, filters map[string]interface{}, resultCount int) error {
	return m.Called(ctx, userID, query, filters, resultCount).Error(0)
}

func (m *MockHistoryRecorder) RecordView(ctx context.Context, userID string, propertyID uint) error {
	return m.Called(ctx, userID, propertyID).Error(0)
}

const testUserHeader = "X-Test-User"

// testAuth trusts the test header. With required=false a missing header passes through.
func testAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader(testUserHeader)
		if uid == "" {
			if required {
				common.RespondWithError(c, common.ErrUnauthorized)
				return
			}
			c.Next()
			return
		}
		common.SetPrincipal(c, common.Principal{ID: uid, Roles: []string{}})
		c.Next()
	}
}

type HandlerTestSuite struct {
	suite.Suite
	fixture *serviceFixture
	history *MockHistoryRecorder
	router  *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.fixture = newServiceFixture(s.T(), &config.Config{MaxImageUploadMB: 1})
	s.history = new(MockHistoryRecorder)

	logger := zap.NewNop()
	s.router = gin.New()
	api := s.router.Group("/api")
	NewHandler(s.fixture.svc, s.history, logger, &config.Config{MaxImageUploadMB: 1}).
		RegisterRoutes(api, testAuth(true), testAuth(false))
	reviewSvc := review.NewService(review.NewGORMRepository(s.fixture.db), NewOwnerLookup(s.fixture.repo), logger)
	review.NewHandler(reviewSvc, logger).RegisterRoutes(api, testAuth(true))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) do(method, path, uid, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set(testUserHeader, uid)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](s *HandlerTestSuite, w *httptest.ResponseRecorder) T {
	var body struct {
		Data T `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Data
}

const newPropertyBody = `{"title":"Maple House","price":320000,"address":"5 Maple Dr","city":"Madison","state":"WI","property_type":"house","bedrooms":3,"bathrooms":2}`

func (s *HandlerTestSuite) createProperty(uid string) PropertyResponse {
	w := s.do(http.MethodPost, "/api/properties", uid, newPropertyBody)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decodeData[PropertyResponse](s, w)
}

func listContains(list []PropertyResponse, id uint) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *HandlerTestSuite) TestNewPropertyIsListed() {
	created := s.createProperty("owner-1")
	s.True(created.Available)

	w := s.do(http.MethodGet, "/api/properties", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(listContains(decodeData[[]PropertyResponse](s, w), created.ID))
}

func (s *HandlerTestSuite) TestUnavailableHiddenFromListButNotFromOwner() {
	created := s.createProperty("owner-1")

	w := s.do(http.MethodPut, fmt.Sprintf("/api/properties/%d", created.ID), "owner-1", `{"available":false}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/properties", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.False(listContains(decodeData[[]PropertyResponse](s, w), created.ID))

	w = s.do(http.MethodGet, "/api/user/properties", "owner-1", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(listContains(decodeData[[]PropertyResponse](s, w), created.ID))
}

func (s *HandlerTestSuite) TestReviewAggregates() {
	created := s.createProperty("owner-1")
	s.history.On("RecordView", mock.Anything, "visitor", created.ID).Return(nil).Once()

	for uid, rating := range map[string]int{"reviewer-a": 3, "reviewer-b": 5} {
		w := s.do(http.MethodPost, fmt.Sprintf("/api/properties/%d/reviews", created.ID), uid, fmt.Sprintf(`{"rating":%d,"comment":"ok"}`, rating))
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, fmt.Sprintf("/api/properties/%d", created.ID), "visitor", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	detail := decodeData[PropertyDetailResponse](s, w)
	s.InDelta(4.0, detail.AverageRating, 0.0001)
	s.Equal(int64(2), detail.ReviewCount)
	s.Len(detail.Reviews, 2)

	w = s.do(http.MethodGet, "/api/properties", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	for _, p := range decodeData[[]PropertyResponse](s, w) {
		if p.ID == created.ID {
			s.InDelta(4.0, p.AverageRating, 0.0001)
			s.Equal(int64(2), p.ReviewCount)
		}
	}
	s.history.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestNonOwnerUpdateIsForbidden() {
	created := s.createProperty("owner-1")

	w := s.do(http.MethodPut, fmt.Sprintf("/api/properties/%d", created.ID), "intruder", `{"title":"Stolen House","price":1}`)
	s.Equal(http.StatusForbidden, w.Code)

	stored, err := s.fixture.repo.FindByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal("Maple House", stored.Title)
	s.Equal(320000.0, stored.Price)
}

func (s *HandlerTestSuite) TestCreate_RequiresAuthAndValidBody() {
	w := s.do(http.MethodPost, "/api/properties", "", newPropertyBody)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/properties", "owner-1", `{"title":"No price","property_type":"castle"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/api/properties", "owner-1", `{not json`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestList_RejectsMalformedFilters() {
	for _, query := range []string{"minPrice=cheap", "minPrice=NaN", "maxPrice=NaN", "maxPrice=Inf", "minPrice=-Inf", "bedrooms=two", "propertyType=castle", "amenities=pool,helipad", "limit=abc"} {
		w := s.do(http.MethodGet, "/api/properties?"+query, "", "")
		s.Equal(http.StatusBadRequest, w.Code, query)
	}
}

func (s *HandlerTestSuite) TestList_RecordsSearchForSignedInUsers() {
	s.createProperty("owner-1")
	s.history.On("RecordSearch", mock.Anything, "searcher", "madison",
		map[string]interface{}{"location": "madison", "amenities": []string{"pet_friendly"}}, 0).Return(nil).Once()

	w := s.do(http.MethodGet, "/api/properties?location=madison&amenities=petFriendly", "searcher", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(decodeData[[]PropertyResponse](s, w))

	w = s.do(http.MethodGet, "/api/properties?location=madison", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(decodeData[[]PropertyResponse](s, w), 1)

	s.history.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestSearch_MatchesLocation() {
	s.createProperty("owner-1")
	w := s.do(http.MethodGet, "/api/properties/search?q=MAPLE", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(decodeData[[]PropertyResponse](s, w), 1)
}

func (s *HandlerTestSuite) TestImageRoutes() {
	created := s.createProperty("owner-1")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/properties/%d/images", created.ID), "owner-1", `{"url":"https://img.example.com/front.jpg","is_primary":true}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	img := decodeData[PropertyImageResponse](s, w)
	s.True(img.IsPrimary)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/property-images/%d", img.ID), "intruder", "")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/property-images/%d/primary", img.ID), "owner-1", "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/property-images/%d", img.ID), "owner-1", "")
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/property-images/%d", img.ID), "owner-1", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestDelete_OwnerRemovesProperty() {
	created := s.createProperty("owner-1")

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/properties/%d", created.ID), "owner-1", "")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/properties/%d", created.ID), "", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func TestParseAmenity(t *testing.T) {
	for in, want := range map[string]Amenity{"petFriendly": AmenityPetFriendly, " Pool ": AmenityPool, "pet_friendly": AmenityPetFriendly} {
		got, ok := ParseAmenity(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseAmenity("helipad")
	assert.False(t, ok)
}
