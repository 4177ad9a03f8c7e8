package pkg

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Toast types understood by the toast partial.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// SetToast sets the HX-Trigger response header with a showToast event.
func SetToast(c *gin.Context, message, toastType string) {
	trigger, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	})
	c.Header("HX-Trigger", string(trigger))
}

// Redirect sends the browser to location: HX-Redirect for htmx requests,
// 303 See Other for everything else.
func Redirect(c *gin.Context, location string) {
	if IsHTMX(c) {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// NoSwap tells htmx to leave the page untouched.
func NoSwap(c *gin.Context) {
	c.Header("HX-Reswap", "none")
}

// Refresh asks htmx to re-issue the listed client events, e.g. to reload
// tables after a mutation.
func Refresh(c *gin.Context, message string, events ...string) {
	payload := map[string]any{
		"showToast": map[string]string{"message": message, "type": ToastSuccess},
	}
	for _, e := range events {
		payload[e] = true
	}
	trigger, _ := json.Marshal(payload)
	c.Header("HX-Trigger", string(trigger))
}

// MutationFailed reports a failed mutation as a single error toast and
// leaves the page as it was. Unauthorized errors are handed to the session
// guard instead: they are recorded on the context and the chain is aborted
// without writing a response.
func MutationFailed(c *gin.Context, err error, fallback string) {
	if domain.IsUnauthorized(err) {
		_ = c.Error(err)
		c.Abort()
		return
	}
	NoSwap(c)
	SetToast(c, domain.UserMessage(err, fallback), ToastError)
	c.Status(http.StatusOK)
}

// ReadFailed hands Unauthorized read errors to the session guard and
// reports whether it did.
func ReadFailed(c *gin.Context, err error) bool {
	if err != nil && domain.IsUnauthorized(err) {
		_ = c.Error(err)
		c.Abort()
		return true
	}
	return false
}
