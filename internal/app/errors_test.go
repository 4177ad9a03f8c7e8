package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
)

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   bool
	}{
		{"application/json only", "application/json", true},
		{"case insensitive", "Application/JSON", true},
		{"mixed with html", "application/json, text/html", false},
		{"text/html", "text/html", false},
		{"empty accept", "", false},
		{"wildcard accept", "*/*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				c.Request.Header.Set("Accept", tt.accept)
			}

			if got := wantsJSON(c); got != tt.want {
				t.Fatalf("wantsJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderError_JSON(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
		wantMsg string
	}{
		{"400 bad request", http.StatusBadRequest, "bad request", "bad request"},
		{"404 not found", http.StatusNotFound, "no such page", "no such page"},
		// Server errors never leak their message.
		{"500 internal", http.StatusInternalServerError, "db exploded", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Accept", "application/json")

			renderError(c, tt.code, tt.message)

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			var resp pkg.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Code != tt.code {
				t.Fatalf("code = %d, want %d", resp.Code, tt.code)
			}
			if resp.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestRenderError_HTMX(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/admin/slots/x", nil)
	c.Request.Header.Set("HX-Request", "true")

	renderError(c, http.StatusBadRequest, "Bad input")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	trigger := w.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "Bad input") || !strings.Contains(trigger, `"error"`) {
		t.Fatalf("HX-Trigger = %q, want an error toast", trigger)
	}
}

func TestRenderError_HTML(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"400 page", http.StatusBadRequest, "400:oops"},
		{"404 page", http.StatusNotFound, "404:oops"},
		{"500 page", http.StatusInternalServerError, "500:oops"},
		{"unmapped code uses the 500 page", http.StatusBadGateway, "500:oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupTestRouter()
			r.GET("/", func(c *gin.Context) { renderError(c, tt.code, "oops") })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestRenderError_HTML_FallsBackToPlainText(t *testing.T) {
	// Without an HTML renderer configured on the engine, c.HTML panics.
	// renderError recovers and falls back to plain text.
	tests := []struct {
		name     string
		code     int
		wantBody string
	}{
		{"500 fallback", 500, "500 Internal Server Error"},
		{"400 fallback", 400, "400 Bad Request"},
		{"404 fallback", 404, "404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("Accept", "text/html")

			renderError(c, tt.code, "ignored for html")

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			if body := w.Body.String(); body != tt.wantBody {
				t.Fatalf("body = %q, want %q", body, tt.wantBody)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Fatalf("Content-Type = %q, want %q", ct, "text/plain; charset=utf-8")
			}
		})
	}
}

func TestErrorTemplates(t *testing.T) {
	expected := map[int]string{
		400: "errors/400.html",
		404: page.NotFoundPage,
		500: page.ErrorPage,
	}

	for code, tmpl := range expected {
		got, ok := errorTemplates[code]
		if !ok {
			t.Fatalf("errorTemplates[%d] missing", code)
		}
		if got != tmpl {
			t.Fatalf("errorTemplates[%d] = %q, want %q", code, got, tmpl)
		}
	}
}
