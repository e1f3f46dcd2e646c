package middleware

import (
	"net/http"

	"account-service/internal/transport/httpdto"
	apperrors "account-service/pkg/errors"
	"account-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached with c.Error as the error
// envelope, unless the handler already wrote a response.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperrors.HTTPStatus(err)
		if l != nil && status >= http.StatusInternalServerError {
			l.ErrorCtx(c.Request.Context(), "request error", zap.Error(err), zap.Int("status", status))
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, httpdto.NewErrorResponse(status, apperrors.Message(err), apperrors.Details(err)...))
	}
}
