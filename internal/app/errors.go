package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
)

// errorTemplates maps HTTP status codes to their error template paths.
var errorTemplates = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusNotFound:            page.NotFoundPage,
	http.StatusInternalServerError: page.ErrorPage,
}

// renderError answers a request the router could not place. htmx gets a
// toast and no swap, explicit JSON clients get the JSON envelope and
// everyone else gets the error page inside the layout.
func renderError(c *gin.Context, code int, message string) {
	switch {
	case pkg.IsHTMX(c):
		pkg.NoSwap(c)
		pkg.SetToast(c, message, pkg.ToastError)
		c.AbortWithStatus(code)
	case wantsJSON(c):
		pkg.Error(c, domain.NewAppError(codeFor(code), message, nil))
	default:
		renderHTMLErrorPage(c, code, message)
	}
}

func codeFor(status int) int {
	switch status {
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusBadRequest:
		return domain.CodeValidation
	default:
		return domain.CodeInternal
	}
}

// renderHTMLErrorPage renders the error template for code, falling back to
// the 500 page for unmapped codes and to plain text if rendering panics.
func renderHTMLErrorPage(c *gin.Context, code int, message string) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(code, "text/plain; charset=utf-8",
				[]byte(fmt.Sprintf("%d %s", code, http.StatusText(code))))
		}
	}()

	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = page.ErrorPage
	}
	page.Render(c, code, tmpl, gin.H{
		"Title":   http.StatusText(code),
		"Message": message,
	})
}

// wantsJSON reports whether the client asked for JSON and not HTML.
func wantsJSON(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
