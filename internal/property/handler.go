package property

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"estate_market_backend/internal/common"
	"estate_market_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryRecorder captures what signed-in users search for and look at.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, userID, query string, filters map[string]interface{}, resultCount int) error
	RecordView(ctx context.Context, userID string, propertyID uint) error
}

// Handler struct holds dependencies for property handlers.
type Handler struct {
	service Service
	history HistoryRecorder
	logger  *zap.Logger
	cfg     *config.Config
}

// NewHandler creates a new property handler.
func NewHandler(service Service, history HistoryRecorder, logger *zap.Logger, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		history: history,
		logger:  logger.Named("PropertyHandler"),
		cfg:     cfg,
	}
}

// RegisterRoutes sets up the property routes. optionalAuthMW attaches a principal
// when one is present so that searches and views can be recorded.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	properties := router.Group("/properties")
	{
		properties.GET("", optionalAuthMW, h.listProperties)
		properties.GET("/featured", h.getFeatured)
		properties.GET("/search", optionalAuthMW, h.searchProperties)
		properties.GET("/:id", optionalAuthMW, h.getProperty)

		properties.POST("", authMW, h.createProperty)
		properties.PUT("/:id", authMW, h.updateProperty)
		properties.DELETE("/:id", authMW, h.deleteProperty)
		properties.POST("/:id/images", authMW, h.addImage)
	}

	router.GET("/user/properties", authMW, h.getUserProperties)

	images := router.Group("/property-images")
	images.Use(authMW)
	{
		images.DELETE("/:id", h.deleteImage)
		images.PUT("/:id/primary", h.setPrimaryImage)
	}
}

func (h *Handler) listProperties(c *gin.Context) {
	filters, snapshot, err := ParseListFilters(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	limit, offset, err := common.GetLimitOffsetParams(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	list, err := h.service.ListProperties(c.Request.Context(), filters, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if len(snapshot) > 0 {
		h.recordSearch(c, c.Query("location"), snapshot, len(list))
	}
	common.RespondOK(c, "Properties retrieved successfully.", ToPropertyResponses(list))
}

func (h *Handler) getFeatured(c *gin.Context) {
	list, err := h.service.GetFeaturedProperties(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Featured properties retrieved successfully.", ToPropertyResponses(list))
}

func (h *Handler) searchProperties(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	list, err := h.service.SearchProperties(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if q != "" {
		h.recordSearch(c, q, map[string]interface{}{"q": q}, len(list))
	}
	common.RespondOK(c, "Search results retrieved successfully.", ToPropertyResponses(list))
}

func (h *Handler) getProperty(c *gin.Context) {
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	detail, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if principal, ok := common.GetPrincipal(c); ok && h.history != nil {
		if err := h.history.RecordView(c.Request.Context(), principal.ID, id); err != nil {
			h.logger.Warn("Failed to record property view", zap.Error(err), zap.Uint("propertyID", id))
		}
	}
	common.RespondOK(c, "Property retrieved successfully.", ToPropertyDetailResponse(detail))
}

func (h *Handler) getUserProperties(c *gin.Context) {
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
	list, err := h.service.GetUserProperties(c.Request.Context(), principal.ID, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User properties retrieved successfully.", ToPropertyResponses(list))
}

func (h *Handler) createProperty(c *gin.Context) {
	principal, ok := common.GetPrincipal(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Create property: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	created, err := h.service.CreateProperty(c.Request.Context(), principal.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Property created successfully.", ToPropertyResponse(*created))
}

func (h *Handler) updateProperty(c *gin.Context) {
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
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	updated, err := h.service.UpdateProperty(c.Request.Context(), principal.ID, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Property updated successfully.", ToPropertyResponse(*updated))
}

func (h *Handler) deleteProperty(c *gin.Context) {
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
	if err := h.service.DeleteProperty(c.Request.Context(), principal.ID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// addImage accepts either a multipart "image" file or a JSON body with a url.
func (h *Handler) addImage(c *gin.Context) {
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

	var in ImageUpload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Multipart field 'image' is required."))
			return
		}
		if limit := h.maxUploadBytes(); limit > 0 && fileHeader.Size > limit {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails(fmt.Sprintf("Image exceeds the %d byte limit.", limit)))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Uploaded image could not be read."))
			return
		}
		defer file.Close()
		in = ImageUpload{
			File:        file,
			ContentType: fileHeader.Header.Get("Content-Type"),
			AltText:     c.PostForm("alt_text"),
			IsPrimary:   c.PostForm("is_primary") == "true",
		}
	} else {
		var req ImageInput
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondWithError(c, common.BindingError(err))
			return
		}
		in = ImageUpload{URL: req.URL, AltText: req.AltText, IsPrimary: req.IsPrimary}
	}

	img, err := h.service.AddImage(c.Request.Context(), principal.ID, id, in)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Image added successfully.", ToImageResponse(*img))
}

func (h *Handler) deleteImage(c *gin.Context) {
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
	if err := h.service.DeleteImage(c.Request.Context(), principal.ID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) setPrimaryImage(c *gin.Context) {
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
	if err := h.service.SetPrimaryImage(c.Request.Context(), principal.ID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Primary image updated successfully.", nil)
}

func (h *Handler) recordSearch(c *gin.Context, query string, filters map[string]interface{}, resultCount int) {
	principal, ok := common.GetPrincipal(c)
	if !ok || h.history == nil {
		return
	}
	if err := h.history.RecordSearch(c.Request.Context(), principal.ID, query, filters, resultCount); err != nil {
		h.logger.Warn("Failed to record search", zap.Error(err), zap.String("userID", principal.ID))
	}
}

func (h *Handler) maxUploadBytes() int64 {
	if h.cfg == nil {
		return 0
	}
	return h.cfg.MaxImageUploadMB << 20
}

// ParseListFilters turns the list query string into typed filters. It also returns
// a snapshot of the accepted parameters for search history. Malformed numbers,
// unknown property types and unknown amenities are rejected with a 400.
func ParseListFilters(c *gin.Context) ([]Filter, map[string]interface{}, error) {
	var filters []Filter
	snapshot := map[string]interface{}{}

	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		filters = append(filters, LocationFilter{Term: loc})
		snapshot["location"] = loc
	}
	if raw := c.Query("propertyType"); raw != "" {
		pt := PropertyType(strings.ToLower(raw))
		if !pt.IsValid() {
			return nil, nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown property type %q.", raw))
		}
		filters = append(filters, PropertyTypeFilter{Type: pt})
		snapshot["propertyType"] = string(pt)
	}

	minPrice, err := parseOptionalFloat(c, "minPrice")
	if err != nil {
		return nil, nil, err
	}
	maxPrice, err := parseOptionalFloat(c, "maxPrice")
	if err != nil {
		return nil, nil, err
	}
	if minPrice != nil || maxPrice != nil {
		filters = append(filters, PriceRangeFilter{Min: minPrice, Max: maxPrice})
		if minPrice != nil {
			snapshot["minPrice"] = *minPrice
		}
		if maxPrice != nil {
			snapshot["maxPrice"] = *maxPrice
		}
	}

	bedrooms, err := parseOptionalInt(c, "bedrooms")
	if err != nil {
		return nil, nil, err
	}
	if bedrooms != nil {
		filters = append(filters, BedroomsFilter{Min: *bedrooms})
		snapshot["bedrooms"] = *bedrooms
	}
	bathrooms, err := parseOptionalInt(c, "bathrooms")
	if err != nil {
		return nil, nil, err
	}
	if bathrooms != nil {
		filters = append(filters, BathroomsFilter{Min: *bathrooms})
		snapshot["bathrooms"] = *bathrooms
	}

	if raw := c.Query("amenities"); raw != "" {
		var amenities []Amenity
		var names []string
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			a, ok := ParseAmenity(part)
			if !ok {
				return nil, nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown amenity %q.", strings.TrimSpace(part)))
			}
			amenities = append(amenities, a)
			names = append(names, string(a))
		}
		if len(amenities) > 0 {
			filters = append(filters, AmenityFilter{Amenities: amenities})
			snapshot["amenities"] = names
		}
	}
	return filters, snapshot, nil
}

func parseOptionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("%s must be a non-negative number.", key))
	}
	return &v, nil
}

func parseOptionalInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("%s must be a non-negative integer.", key))
	}
	return &v, nil
}
