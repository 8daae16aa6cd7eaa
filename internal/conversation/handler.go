package conversation

import (
	"strconv"

	"estate_market_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for conversation handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new conversation handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ConversationHandler")}
}

// RegisterRoutes sets up the messaging routes behind authMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := router.Group("/conversations", authMW)
	{
		g.GET("", h.list)
		g.POST("", h.start)
		g.GET("/unread-count", h.unreadCount)
		g.GET("/:id/messages", h.listMessages)
		g.POST("/:id/messages", h.send)
		g.PUT("/:id/messages/read", h.markRead)
	}
}

func (h *Handler) start(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	conv, err := h.service.Start(c.Request.Context(), principal.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Conversation ready.", ToConversationResponse(Summary{Conversation: *conv}))
}

func (h *Handler) list(c *gin.Context) {
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
	common.RespondOK(c, "Conversations retrieved successfully.", ToConversationResponses(list))
}

func (h *Handler) unreadCount(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	n, err := h.service.UnreadCount(c.Request.Context(), principal.ID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved.", gin.H{"unread_count": n})
}

func (h *Handler) listMessages(c *gin.Context) {
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
	limit, _, err := common.GetLimitOffsetParams(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var before uint64
	if raw := c.Query("before"); raw != "" {
		before, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("before must be a message id."))
			return
		}
	}
	msgs, err := h.service.ListMessages(c.Request.Context(), principal.ID, id, uint(before), limit)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Messages retrieved successfully.", ToMessageResponses(msgs))
}

func (h *Handler) send(c *gin.Context) {
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
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	msg, err := h.service.Send(c.Request.Context(), principal.ID, id, req.Content)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message sent.", ToMessageResponse(*msg))
}

func (h *Handler) markRead(c *gin.Context) {
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
	n, err := h.service.MarkRead(c.Request.Context(), principal.ID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Messages marked as read.", gin.H{"marked": n})
}
