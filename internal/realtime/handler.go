package realtime

import (
	"net/http"
	"slices"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades authenticated requests to websocket connections.
type Handler struct {
	hub            *Hub
	allowedOrigins []string
	logger         *zap.Logger
}

// NewHandler creates a websocket handler. Upgrades are accepted from the CORS
// origins; "*" accepts any origin.
func NewHandler(hub *Hub, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, allowedOrigins: cfg.CORSAllowedOrigins, logger: logger.Named("RealtimeHandler")}
}

// RegisterRoutes mounts GET /ws behind authMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/ws", authMW, h.serve)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.allowedOrigins, "*") || slices.Contains(h.allowedOrigins, origin)
}

func (h *Handler) serve(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.String("userID", principal.ID), zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, principal.ID, h.logger)
	h.hub.register(client)
	go client.write()
	go client.read()
}
