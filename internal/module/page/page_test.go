package page

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const stubTemplates = `{{define "fragments/table.html"}}table:{{.Table.State}}:{{len .Table.Rows}}{{end}}` +
	`{{define "things.html"}}page:{{.Title}}:{{.Table.TotalCount}}:{{.Path}}{{end}}` +
	`{{define "dialog.html"}}dialog:{{.Dialog.Top.Kind}}:{{.Dialog.Top.Payload}}|{{.Dialog.CloseURL}}{{end}}` +
	`{{define "errors/404.html"}}404:{{.Message}}{{end}}` +
	`{{define "errors/500.html"}}500:{{.Message}}{{end}}`

type thing struct{ Name string }

func newThingTable() *table.Table[thing] {
	return &table.Table[thing]{
		ID:      "things",
		Path:    "/things",
		Columns: []table.Column[thing]{{Key: "name", Header: "Name", Sortable: true, Value: func(t thing) string { return t.Name }}},
		Filters: []table.Filter{{Name: "kind", Label: "Kind"}},
	}
}

func okLoader(items ...thing) Loader[thing] {
	return func(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[thing]] {
		return domain.Ok(domain.Envelope[thing]{Items: items, TotalCount: len(items), Page: req.PageIndex + 1, PageSize: req.PageSize})
	}
}

func newRouter(h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(stubTemplates)))
	r.GET("/things", h)
	r.GET("/things/:id", h)
	return r
}

func get(r http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServeTable_FullPage(t *testing.T) {
	var got domain.PageRequest
	load := func(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[thing]] {
		got = req
		return okLoader(thing{"a"}, thing{"b"})(ctx, req)
	}
	r := newRouter(func(c *gin.Context) {
		ServeTable(c, table.NewTracker(), newThingTable(), load, "things.html", gin.H{"Title": "Things"})
	})

	w := get(r, "/things?page=3&size=20&q=ab&sort=name&dir=desc&f.kind=x", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != "page:Things:2:/things" {
		t.Errorf("body = %q", body)
	}
	if got.PageIndex != 2 || got.PageSize != 20 || got.Search != "ab" || got.SortDir != domain.SortDesc || got.Filter("kind") != "x" {
		t.Errorf("request = %+v", got)
	}
}

func TestServeTable_Fragment(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		ServeTable(c, table.NewTracker(), newThingTable(), okLoader(thing{"a"}), "things.html", nil)
	})

	w := get(r, "/things", map[string]string{"HX-Request": "true", "HX-Target": "things"})
	if body := w.Body.String(); body != "table:rows:1" {
		t.Errorf("body = %q", body)
	}

	// htmx requests for other targets still get the page.
	w = get(r, "/things", map[string]string{"HX-Request": "true", "HX-Target": "main"})
	if !strings.HasPrefix(w.Body.String(), "page:") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestServeTable_ErrorAndEmpty(t *testing.T) {
	load := func(context.Context, domain.PageRequest) domain.Result[domain.Envelope[thing]] {
		return domain.Fail[domain.Envelope[thing]](domain.NewNetworkFailure(nil))
	}
	r := newRouter(func(c *gin.Context) {
		ServeTable(c, nil, newThingTable(), load, "things.html", nil)
	})
	w := get(r, "/things", map[string]string{"HX-Request": "true", "HX-Target": "things"})
	if w.Code != http.StatusOK || w.Body.String() != "table:error:0" {
		t.Errorf("error table = %d %q", w.Code, w.Body.String())
	}

	r = newRouter(func(c *gin.Context) {
		ServeTable(c, nil, newThingTable(), okLoader(), "things.html", nil)
	})
	w = get(r, "/things", map[string]string{"HX-Request": "true", "HX-Target": "things"})
	if w.Body.String() != "table:empty:0" {
		t.Errorf("empty table = %q", w.Body.String())
	}
}

func TestServeTable_StaleFragmentDropped(t *testing.T) {
	tracker := table.NewTracker()
	load := func(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[thing]] {
		// A newer read of the same table starts while this one runs.
		_, newer := tracker.Begin(context.Background(), "things")
		defer newer.Done()
		if ctx.Err() == nil {
			t.Error("overtaken read should have its context cancelled")
		}
		return okLoader(thing{"old"})(ctx, req)
	}
	r := newRouter(func(c *gin.Context) {
		ServeTable(c, tracker, newThingTable(), load, "things.html", nil)
	})

	w := get(r, "/things?q=o", map[string]string{"HX-Request": "true", "HX-Target": "things"})
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("stale fragment = %d %q", w.Code, w.Body.String())
	}
}

func TestServeTable_Unauthorized(t *testing.T) {
	load := func(context.Context, domain.PageRequest) domain.Result[domain.Envelope[thing]] {
		return domain.Fail[domain.Envelope[thing]](domain.ErrUnauthorized)
	}
	var errs int
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(stubTemplates)))
	r.Use(func(c *gin.Context) {
		c.Next()
		errs = len(c.Errors)
	})
	r.GET("/things", func(c *gin.Context) {
		ServeTable(c, nil, newThingTable(), load, "things.html", nil)
	})

	w := get(r, "/things", nil)
	if errs != 1 || w.Body.Len() != 0 {
		t.Errorf("errors = %d, body = %q", errs, w.Body.String())
	}
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		htmx       bool
		wantStatus int
		wantBody   string
	}{
		{"not found", domain.NewAppError(domain.CodeNotFound, "Slot not found", nil), false, http.StatusNotFound, "404:Slot not found"},
		{"network", domain.NewNetworkFailure(nil), false, http.StatusBadGateway, "500:Could not load."},
		{"internal", domain.NewAppError(domain.CodeInternal, "db exploded", nil), false, http.StatusInternalServerError, "500:Could not load."},
		{"htmx", domain.NewNetworkFailure(nil), true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(func(c *gin.Context) { Fail(c, tt.err, "Could not load.") })
			headers := map[string]string{}
			if tt.htmx {
				headers["HX-Request"] = "true"
			}
			w := get(r, "/things", headers)
			if w.Code != tt.wantStatus || w.Body.String() != tt.wantBody {
				t.Errorf("got %d %q; want %d %q", w.Code, w.Body.String(), tt.wantStatus, tt.wantBody)
			}
			if tt.htmx && !strings.Contains(w.Header().Get("HX-Trigger"), "Could not load.") {
				t.Errorf("HX-Trigger = %q", w.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestID(t *testing.T) {
	var got string
	r := newRouter(func(c *gin.Context) {
		id, ok := ID(c)
		if ok {
			got = id
			c.Status(http.StatusOK)
		}
	})
	if w := get(r, "/things/abc-123_X", nil); w.Code != http.StatusOK || got != "abc-123_X" {
		t.Errorf("valid id: %d %q", w.Code, got)
	}
	if w := get(r, "/things/a.b", nil); w.Code != http.StatusNotFound {
		t.Errorf("malformed id: %d", w.Code)
	}
}

func TestFormStatus(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	if FormStatus(c) != http.StatusUnprocessableEntity {
		t.Error("plain form errors should be 422")
	}
	c.Request.Header.Set("HX-Request", "true")
	if FormStatus(c) != http.StatusOK {
		t.Error("htmx form errors should be 200")
	}
}

func TestDialogs(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		d, ok := OpenDialog(c, "/things/dialog")
		if !ok {
			CloseDialog(c)
			return
		}
		RenderDialog(c, "dialog.html", d, nil)
	})

	w := get(r, "/things?dialog=detail:7&dialog=delete:7", nil)
	if w.Body.String() != "dialog:delete:7|/things/dialog?dialog=detail%3A7" {
		t.Errorf("stacked dialog = %q", w.Body.String())
	}

	w = get(r, "/things", nil)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("closed dialog = %d %q", w.Code, w.Body.String())
	}

	d := Dialog{Path: "/things/dialog", Stack: ui.Dialogs{}.Open("detail", "7")}
	if got := d.OpenURL("edit", "7"); got != "/things/dialog?dialog=detail%3A7&dialog=edit%3A7" {
		t.Errorf("OpenURL() = %q", got)
	}
	if got := d.CloseURL(); got != "/things/dialog" {
		t.Errorf("CloseURL() = %q", got)
	}
}
