package v1

import (
	"log"

	"github.com/gin-gonic/gin"

	"blogit/internal/apperror"
)

// respondError maps a domain error to its status code and a short message.
// Internal causes are logged server-side and never leak to the client.
func respondError(c *gin.Context, appErr *apperror.AppError) {
	if appErr.Type == apperror.InternalError {
		log.Printf("[%s %s] internal error: %v", c.Request.Method, c.Request.URL.Path, appErr)
	}
	c.JSON(appErr.StatusCode(), gin.H{"error": appErr.Message})
}
