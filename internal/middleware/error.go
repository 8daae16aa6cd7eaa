package middleware

import (
	"net/http"

	"estate_market_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errMethodNotAllowed = common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")

// ErrorHandler renders the last error pushed with c.Error when the handler left the
// response unwritten.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}
		if _, ok := common.IsAPIError(last.Err); ok {
			common.RespondWithError(c, last.Err)
			return
		}
		logger.Error("Unhandled application error",
			zap.Error(last.Err),
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDContextKey)),
		)
		common.RespondWithError(c, common.ErrInternalServer)
	}
}

func NoRoute(c *gin.Context) {
	common.RespondWithError(c, common.ErrNotFound.WithDetails("The requested endpoint does not exist."))
}

func NoMethod(c *gin.Context) {
	common.RespondWithError(c, errMethodNotAllowed)
}
