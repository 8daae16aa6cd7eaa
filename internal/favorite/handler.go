package favorite

import (
	"errors"
	"io"

	"estate_market_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for favorite handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new favorite handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("FavoriteHandler")}
}

// RegisterRoutes sets up the favorite routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.POST("/properties/:id/favorite", authMW, h.add)
	router.DELETE("/properties/:id/favorite", authMW, h.remove)
	router.GET("/user/favorites", authMW, h.listMine)
}

func (h *Handler) add(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	propertyID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	fav, err := h.service.Add(c.Request.Context(), principal.ID, propertyID, req.Note)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Property added to favorites.", ToFavoriteResponse(*fav))
}

func (h *Handler) remove(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	propertyID, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), principal.ID, propertyID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) listMine(c *gin.Context) {
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
	favs, err := h.service.ListMine(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Favorites retrieved successfully.", ToFavoriteResponses(favs))
}
