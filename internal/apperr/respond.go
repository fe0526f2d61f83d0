package apperr

import (
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/logger"
)

// Respond writes err as a JSON error body with the matching status and
// aborts the request. Internal errors are logged and never leak their cause.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	if kind == KindInternal {
		logger.ErrorWithContext(c.Request.Context(), "%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(kind.Status(), gin.H{"error": MessageOf(err)})
}
