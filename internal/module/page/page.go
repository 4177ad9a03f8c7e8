// Package page holds what every page module renders through: layout data,
// error pages, the paginated table endpoint and the dialog root.
package page

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/middleware"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

// Templates shared by all modules.
const (
	TableFragment = "fragments/table.html"
	NotFoundPage  = "errors/404.html"
	ErrorPage     = "errors/500.html"
)

// Routes are the groups a module registers on. User requires a signed-in
// user, Admin requires the ADMIN role.
type Routes struct {
	Public *gin.RouterGroup
	User   *gin.RouterGroup
	Admin  *gin.RouterGroup
}

// Render writes the named template with the data every layout expects
// added to data: the CSRF token, the signed-in user and the current path.
func Render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, layoutData(c, data))
}

func layoutData(c *gin.Context, data gin.H) gin.H {
	out := make(gin.H, len(data)+5)
	for k, v := range data {
		out[k] = v
	}
	out["CSRFToken"] = middleware.GetCSRFToken(c)
	out["Path"] = c.Request.URL.Path
	if u, ok := session.Current(c).User(); ok {
		out["CurrentUser"] = u
		out["IsAdmin"] = u.IsAdmin()
		out["Home"] = session.HomePath(u)
	}
	return out
}

// Fail reports a read the page cannot do without. Unauthorized errors go to
// the session guard, htmx requests get an error toast and full pages get
// the matching error page.
func Fail(c *gin.Context, err error, fallback string) {
	if pkg.ReadFailed(c, err) {
		return
	}
	if pkg.IsHTMX(c) {
		pkg.MutationFailed(c, err, fallback)
		return
	}
	if domain.IsNotFound(err) {
		Render(c, http.StatusNotFound, NotFoundPage, gin.H{
			"Title":   "Not found",
			"Message": domain.UserMessage(err, fallback),
		})
		return
	}
	status := http.StatusInternalServerError
	if domain.IsNetworkFailure(err) || domain.IsServerRejected(err) {
		status = http.StatusBadGateway
	}
	Render(c, status, ErrorPage, gin.H{
		"Title":   "Something went wrong",
		"Message": domain.UserMessage(err, fallback),
	})
}

// Require returns the value of a detail read. A disabled read, one that
// had no id to read, is reported as not found.
func Require[T any](r domain.Result[T]) (T, error) {
	if r.IsDisabled() {
		var zero T
		return zero, domain.ErrNotFound
	}
	return r.Get()
}

// SubmitFailed decides how a failed form submission is reported. Errors
// that belong to fields are returned for the form to show inline. Anything
// else becomes an error toast and nil is returned.
func SubmitFailed(c *gin.Context, err error, fallback string) map[string]string {
	if domain.IsValidation(err) || len(domain.FieldErrors(err)) > 0 {
		return pkg.FormErrors(err, fallback)
	}
	pkg.MutationFailed(c, err, fallback)
	return nil
}

// Done finishes a successful mutation made from a dialog: a success toast,
// the refresh events of the affected tables, and an empty dialog root.
func Done(c *gin.Context, message string, events ...string) {
	pkg.Refresh(c, message, events...)
	CloseDialog(c)
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ID returns the :id path parameter. A malformed id is reported as not
// found and false is returned.
func ID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !idPattern.MatchString(id) {
		Fail(c, domain.ErrNotFound, "Record not found.")
		return "", false
	}
	return id, true
}

// FormStatus is the status of a form re-rendered with errors. htmx only
// swaps successful responses, so its forms come back as 200.
func FormStatus(c *gin.Context) int {
	if pkg.IsHTMX(c) {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

// Loader reads one page of a table.
type Loader[T any] func(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[T]]

// IsFragment reports whether an htmx request wants only the element with
// the given id.
func IsFragment(c *gin.Context, id string) bool {
	return pkg.IsHTMX(c) && c.GetHeader("HX-Target") == id
}

// ServeTable reads the page the query string asks for and renders it into
// t. Requests aimed at the table itself get only the table fragment; all
// others get the named page with the table under "Table" in data.
//
// Each read runs under a tracker ticket. A fragment that was overtaken by a
// newer read of the same table is answered with 204, which htmx does not
// swap, so a slow old response never replaces a newer one.
func ServeTable[T any](c *gin.Context, tracker *table.Tracker, t *table.Table[T], load Loader[T], name string, data gin.H) {
	names := make([]string, 0, len(t.Filters))
	for _, f := range t.Filters {
		names = append(names, f.Name)
	}
	t.Descriptor = table.ParseDescriptor(c.Request.URL.Query(), names...)

	ctx := c.Request.Context()
	var ticket table.Ticket
	if tracker != nil {
		ctx, ticket = tracker.Begin(ctx, t.ID)
		defer ticket.Done()
	}

	res := load(ctx, t.Descriptor.Request())
	fragment := IsFragment(c, t.ID)
	if fragment && !ticket.Current() {
		c.Status(http.StatusNoContent)
		return
	}
	if res.IsErr() && pkg.ReadFailed(c, res.Err) {
		return
	}

	t.FromResult(res)
	view := t.View()
	if fragment {
		Render(c, http.StatusOK, TableFragment, gin.H{"Table": view})
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["Table"] = view
	Render(c, http.StatusOK, name, data)
}

// Dialog is the state a dialog endpoint works from.
type Dialog struct {
	// Path is the endpoint that renders the module's dialogs.
	Path  string
	Stack ui.Dialogs
	Top   ui.Dialog
}

// OpenDialog reads the dialog stack from the query string. It returns
// false when nothing is open.
func OpenDialog(c *gin.Context, path string) (Dialog, bool) {
	stack := ui.ParseDialogs(c.Request.URL.Query())
	top, ok := stack.Top()
	return Dialog{Path: path, Stack: stack, Top: top}, ok
}

// CloseURL reloads the dialog beneath the top one, or empties the dialog
// root when there is none.
func (d Dialog) CloseURL() string {
	return d.Stack.Close().URL(d.Path)
}

// OpenURL stacks another dialog on top of this one.
func (d Dialog) OpenURL(kind, payload string) string {
	return d.Stack.Open(kind, payload).URL(d.Path)
}

// Action is the URL a dialog form submits to. It carries the stack so a
// form re-rendered with errors keeps its place.
func (d Dialog) Action(path string) string {
	return d.Stack.URL(path)
}

// DialogURL opens a single dialog from a page.
func DialogURL(path, kind, payload string) string {
	return ui.Dialogs{}.Open(kind, payload).URL(path)
}

// RenderDialog renders the top dialog into the dialog root.
func RenderDialog(c *gin.Context, name string, d Dialog, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Dialog"] = d
	Render(c, http.StatusOK, name, data)
}

// CloseDialog empties the dialog root.
func CloseDialog(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", nil)
}
