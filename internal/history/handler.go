package history

import (
	"estate_market_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for history handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new history handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("HistoryHandler")}
}

// RegisterRoutes sets up the signed-in user's history routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/user")
	g.Use(authMW)
	{
		g.GET("/search-history", h.listSearches)
		g.DELETE("/search-history", h.clearSearches)
		g.GET("/viewing-history", h.listViews)
	}
}

func (h *Handler) listSearches(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	limit, offset, err := common.GetLimitOffsetParams(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	rows, err := h.service.ListSearchHistory(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Search history retrieved successfully.", toSearchResponses(rows))
}

func (h *Handler) clearSearches(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	if _, err := h.service.ClearSearchHistory(c.Request.Context(), principal.ID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) listViews(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	limit, offset, err := common.GetLimitOffsetParams(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	rows, err := h.service.ListViewingHistory(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Viewing history retrieved successfully.", toViewingResponses(rows))
}
