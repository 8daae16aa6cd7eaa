package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, hub *Hub, origins []string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := func(c *gin.Context) {
		uid := c.Query("uid")
		if uid == "" {
			common.RespondWithError(c, common.ErrUnauthorized)
			return
		}
		common.SetPrincipal(c, common.Principal{ID: uid, Roles: []string{}})
		c.Next()
	}
	NewHandler(hub, &config.Config{CORSAllowedOrigins: origins}, zap.NewNop()).RegisterRoutes(router.Group("/api"), auth)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?" + query
}

func TestHub_DeliversToUser(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "uid=alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify("bob", "message.new", map[string]string{"content": "not for alice"})
	hub.Notify("alice", "message.new", map[string]string{"content": "hi"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "message.new", env.Type)
	assert.Equal(t, "hi", env.Data["content"])
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "uid=carol"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connections("carol") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections("carol") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RequiresAuth(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, []string{"*"})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(t, hub, []string{"https://app.example.com"})

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "uid=dave"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Connections("dave"))
}

func TestNotify_WithoutConnectionsIsNoop(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.NotPanics(t, func() { hub.Notify("nobody", "message.new", nil) })
}
