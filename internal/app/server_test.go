package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estate_market_backend/internal/admin"
	"estate_market_backend/internal/booking"
	"estate_market_backend/internal/config"
	"estate_market_backend/internal/conversation"
	"estate_market_backend/internal/favorite"
	"estate_market_backend/internal/history"
	"estate_market_backend/internal/jobs"
	"estate_market_backend/internal/platform/database"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/realtime"
	"estate_market_backend/internal/review"
	"estate_market_backend/internal/storage"
	"estate_market_backend/internal/user"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// fakeVerifier accepts any token of the form "uid-<id>" and uses <id> as the uid.
type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	uid, ok := strings.CutPrefix(idToken, "uid-")
	if !ok || uid == "" {
		return nil, errors.New("bad token")
	}
	return &firebaseauth.Token{UID: uid, Claims: map[string]interface{}{
		"email": uid + "@example.com",
		"name":  strings.ToUpper(uid[:1]) + uid[1:],
	}}, nil
}

type ServerTestSuite struct {
	suite.Suite
	server *Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	cfg := &config.Config{
		GinMode:            "test",
		DBAutoMigrate:      true,
		CORSAllowedOrigins: []string{"*"},
		AdminUserIDs:       []string{"root"},
	}
	logger := zap.NewNop()
	db, err := database.OpenInMemory()
	s.Require().NoError(err)

	userRepo := user.NewGORMRepository(db)
	users := user.NewService(userRepo, cfg, logger)
	propRepo := property.NewGORMRepository(db)
	lookup := property.NewOwnerLookup(propRepo)
	reviews := review.NewService(review.NewGORMRepository(db), lookup, logger)
	properties := property.NewService(propRepo, reviews, users, storage.NewService(cfg, nil, logger), property.NewIndexer(nil, logger), cfg, logger)
	hist := history.NewService(history.NewGORMRepository(db), logger)
	hub := realtime.NewHub(logger)

	handlers := Handlers{
		User:         user.NewHandler(users, logger),
		Property:     property.NewHandler(properties, hist, logger, cfg),
		Review:       review.NewHandler(reviews, logger),
		Booking:      booking.NewHandler(booking.NewService(booking.NewGORMRepository(db), lookup, logger), logger),
		Favorite:     favorite.NewHandler(favorite.NewService(favorite.NewGORMRepository(db), lookup, properties, logger), logger),
		History:      history.NewHandler(hist, logger),
		Conversation: conversation.NewHandler(conversation.NewService(conversation.NewGORMRepository(db), lookup, hub, logger), logger),
		Realtime:     realtime.NewHandler(hub, cfg, logger),
		Admin:        admin.NewHandler(admin.NewGORMStatsRepository(db), users, properties, logger),
	}

	s.server, err = NewServer(cfg, logger, db, fakeVerifier{}, users, handlers, jobs.NewHistoryPruneJob(hist, logger, cfg), nil)
	s.Require().NoError(err)
}

func (s *ServerTestSuite) do(method, path, uid, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer uid-"+uid)
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) data(w *httptest.ResponseRecorder) map[string]interface{} {
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Data
}

func (s *ServerTestSuite) TestHealthAndFallbacks() {
	w := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
	s.JSONEq(`{"status":"UP","database":"up","search":"disabled"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/nope", "", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "NOT_FOUND")

	w = s.do(http.MethodPatch, "/health", "", "")
	s.Equal(http.StatusMethodNotAllowed, w.Code)
}

func (s *ServerTestSuite) TestAuthentication() {
	w := s.do(http.MethodGet, "/api/auth/user", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/user", "alice", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	me := s.data(w)
	s.Equal("alice", me["id"])
	s.Equal("alice@example.com", me["email"])
}

func (s *ServerTestSuite) TestMarketplaceFlow() {
	w := s.do(http.MethodPost, "/api/properties", "alice",
		`{"title":"Lakeside Cabin","price":180000,"address":"3 Shore Rd","city":"Tahoe","state":"CA","property_type":"house","bedrooms":2,"bathrooms":1,"parking":true}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	propertyID := uint(s.data(w)["id"].(float64))
	base := fmt.Sprintf("/api/properties/%d", propertyID)

	w = s.do(http.MethodPost, base+"/favorite", "bob", `{"note":"weekend trip"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/bookings", "bob", `{"contact_name":"Bob","contact_email":"bob@example.com","preferred_date":"2026-12-01"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	bookingID := uint(s.data(w)["id"].(float64))

	w = s.do(http.MethodPut, fmt.Sprintf("/api/bookings/%d/status", bookingID), "alice", `{"status":"confirmed"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("confirmed", s.data(w)["status"])

	w = s.do(http.MethodPost, "/api/conversations", "bob", fmt.Sprintf(`{"property_id":%d,"message":"Is the dock shared?"}`, propertyID))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/conversations/unread-count", "alice", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, s.data(w)["unread_count"])

	w = s.do(http.MethodGet, base, "bob", "")
	s.Require().Equal(http.StatusOK, w.Code)
	detail := s.data(w)
	s.Equal("Lakeside Cabin", detail["title"])
	owner, ok := detail["owner"].(map[string]interface{})
	s.Require().True(ok)
	s.Equal("alice", owner["id"])

	w = s.do(http.MethodGet, "/api/user/viewing-history", "bob", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Lakeside Cabin")

	w = s.do(http.MethodGet, "/api/user/favorites", "bob", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "weekend trip")

	w = s.do(http.MethodDelete, base, "alice", "")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/user/favorites", "bob", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), "weekend trip")
}

func (s *ServerTestSuite) TestAdminBootstrap() {
	w := s.do(http.MethodGet, "/api/admin/stats", "bob", "")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/admin/stats", "root", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	stats := s.data(w)
	s.EqualValues(2, stats["users"], "bob and root are provisioned on first request")
}

func TestModelsCoverEveryTable(t *testing.T) {
	db, err := database.OpenInMemory(Models()...)
	require.NoError(t, err)
	for _, table := range []string{"users", "properties", "property_images", "reviews", "bookings", "favorites",
		"search_history", "viewing_history", "conversations", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
