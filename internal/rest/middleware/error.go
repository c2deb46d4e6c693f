package middleware

import (
	"net/http"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/sentry"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error. Server
// errors are reported to Sentry and never leak their internal message.
func ErrorHandler(sentrySvc *sentry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status, resp := ierr.ToResponse(err)
		if status >= http.StatusInternalServerError {
			sentrySvc.CaptureException(c.Request.Context(), err)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, resp)
	}
}
