package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/pkg"
)

// abortWith stops the chain and answers in the shape the caller understands:
// htmx requests get a toast and no swap, browsers get the error page for
// status, and everything else gets the JSON envelope.
func abortWith(c *gin.Context, status int, message string) {
	c.Abort()
	switch {
	case pkg.IsHTMX(c):
		pkg.NoSwap(c)
		pkg.SetToast(c, message, pkg.ToastError)
		c.AbortWithStatus(status)
	case acceptsHTML(c):
		renderHTMLError(c, status, message)
	default:
		c.JSON(status, pkg.Response{Code: status, Message: message})
	}
}

// renderHTMLError renders errors/<status>.html. Without a renderer, or when
// the template fails, it falls back to plain text.
func renderHTMLError(c *gin.Context, status int, message string) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(status, "text/plain; charset=utf-8", []byte(http.StatusText(status)))
		}
	}()
	c.HTML(status, errorTemplate(status), gin.H{
		"Title":   http.StatusText(status),
		"Message": message,
	})
}

func errorTemplate(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "errors/404.html"
	case status == http.StatusBadRequest:
		return "errors/400.html"
	case status >= http.StatusInternalServerError:
		return "errors/500.html"
	default:
		return "errors/error.html"
	}
}

// acceptsHTML returns true if the request's Accept header contains "text/html".
func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}
