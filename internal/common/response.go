package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const statusSuccess = "success"

// SuccessResponse is the envelope of every 2xx body.
type SuccessResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// RequestLogger returns the logger the request middleware attached to c, or a no-op
// logger when none was attached.
func RequestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// RespondWithError writes err as an API error body. Anything that is not an
// *APIError is logged and replaced by ErrInternalServer.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		RequestLogger(c).Error("Unhandled internal error",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
		)
		apiErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// RespondSuccess writes the success envelope with an arbitrary status code.
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{Status: statusSuccess, Message: message, Data: data})
}

func RespondOK(c *gin.Context, message string, data interface{}) {
	RespondSuccess(c, http.StatusOK, message, data)
}

func RespondCreated(c *gin.Context, message string, data interface{}) {
	RespondSuccess(c, http.StatusCreated, message, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondPaginated writes one page. Data is always present, an empty page included.
func RespondPaginated(c *gin.Context, message string, data interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, struct {
		SuccessResponse
		Data interface{} `json:"data"`
	}{
		SuccessResponse: SuccessResponse{Status: statusSuccess, Message: message, Pagination: pagination},
		Data:            data,
	})
}
