package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/carteirapulse/internal/domain/dto"
	"github.com/guttosm/carteirapulse/internal/logger"
)

// ErrorHandler drains errors attached to the Gin context by downstream
// handlers. It logs the last error and, if no response was written yet,
// answers with a standardized 500 payload.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	err := c.Errors.Last().Err
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Err(err).
		Msg("request error")

	if !c.Writer.Written() {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("internal error", err))
	}
}

// AbortWithError records err on the context and aborts the request with a
// standardized JSON error payload.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
