package booking

import (
	"estate_market_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for booking handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("BookingHandler")}
}

// RegisterRoutes sets up the booking routes. Every route requires authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.POST("/properties/:id/bookings", authMW, h.create)
	router.GET("/properties/:id/bookings", authMW, h.listForProperty)
	router.GET("/user/bookings", authMW, h.listMine)
	router.PUT("/bookings/:id/status", authMW, h.updateStatus)
}

func (h *Handler) create(c *gin.Context) {
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
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	b, err := h.service.Create(c.Request.Context(), principal.ID, propertyID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Booking request submitted.", ToBookingResponse(*b))
}

func (h *Handler) listForProperty(c *gin.Context) {
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
	limit, offset, err := common.GetLimitOffsetParams(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	list, err := h.service.ListForProperty(c.Request.Context(), principal.ID, propertyID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Bookings retrieved successfully.", ToBookingResponses(list))
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
	list, err := h.service.ListMine(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Bookings retrieved successfully.", ToBookingResponses(list))
}

func (h *Handler) updateStatus(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	b, err := h.service.UpdateStatus(c.Request.Context(), principal.ID, id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking status updated.", ToBookingResponse(*b))
}
