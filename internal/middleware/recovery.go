package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const panicMessage = "Something went wrong. Please try again."

// Recovery recovers from panics in later handlers and logs them with a stack
// trace. htmx requests get an error toast instead of a swapped error page,
// browsers get errors/500.html and other clients the JSON envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", err),
				slog.String("method", c.Request.Method),
				slog.String("route", route(c)),
				slog.String("stack", string(debug.Stack())),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortWith(c, http.StatusInternalServerError, panicMessage)
		}()
		c.Next()
	}
}

// route is the matched route template, or the raw path for unmatched requests.
func route(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
