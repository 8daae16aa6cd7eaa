package admin

import (
	"estate_market_backend/internal/common"
	"estate_market_backend/internal/property"
	"estate_market_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the admin back-office.
type Handler struct {
	stats      StatsRepository
	users      user.Service
	properties property.Service
	logger     *zap.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(stats StatsRepository, users user.Service, properties property.Service, logger *zap.Logger) *Handler {
	return &Handler{stats: stats, users: users, properties: properties, logger: logger.Named("AdminHandler")}
}

// RegisterRoutes mounts /admin behind authMW and adminRoleMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, adminRoleMW gin.HandlerFunc) {
	g := router.Group("/admin")
	g.Use(authMW, adminRoleMW)
	{
		g.GET("/stats", h.getStats)
		g.GET("/users", h.listUsers)
		g.PUT("/users/:id/roles", h.setRoles)
		g.PUT("/properties/:id/featured", h.setFeatured)
		g.DELETE("/properties/:id", h.deleteProperty)
	}
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.stats.Collect(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Admin: Stats retrieved successfully.", stats)
}

func (h *Handler) listUsers(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	users, pagination, err := h.users.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	out := make([]user.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, user.ToUserResponse(&users[i]))
	}
	common.RespondPaginated(c, "Admin: Users retrieved successfully.", out, pagination)
}

func (h *Handler) setRoles(c *gin.Context) {
	id := c.Param("id")
	var req user.SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.users.SetRoles(c.Request.Context(), id, req.Roles)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	principal, _ := common.GetPrincipal(c)
	h.logger.Info("Admin: roles updated", zap.String("adminID", principal.ID), zap.String("userID", id), zap.Strings("roles", req.Roles))
	common.RespondOK(c, "Admin: Roles updated successfully.", user.ToUserResponse(usr))
}

func (h *Handler) setFeatured(c *gin.Context) {
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var req property.SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	p, err := h.properties.SetFeatured(c.Request.Context(), id, *req.Featured)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Admin: Featured flag updated.", property.ToPropertyResponse(*p))
}

func (h *Handler) deleteProperty(c *gin.Context) {
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.properties.AdminDeleteProperty(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	principal, _ := common.GetPrincipal(c)
	h.logger.Info("Admin: property deleted", zap.String("adminID", principal.ID), zap.Uint("propertyID", id))
	common.RespondNoContent(c)
}
