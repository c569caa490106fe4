package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"repairhub-backend/internal/metrics"
	"repairhub-backend/internal/shared"
	"repairhub-backend/internal/shared/response"
)

// ErrCodePanic is returned to the client when a handler panics.
const ErrCodePanic = "SYS_PANIC"

// Recovery converts a handler panic into a 500 envelope and counts it.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			metrics.PanicsRecoveredTotal.Inc()
			log.Error().
				Str("request_id", c.GetString(shared.ContextKeyRequestID)).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.ErrorResponse(c, http.StatusInternalServerError, ErrCodePanic, "Internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
