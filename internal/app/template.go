package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/simp-lee/parkdash/internal/module/page"
)

// TemplateRenderer is a gin HTML renderer over a templates/ tree:
//
//	templates/
//	  layouts/    page skeletons, e.g. base.html defining "base"
//	  partials/   shared definitions: the data table, form fields, nav
//	  <module>/   full pages and dialog bodies, e.g. slots/admin.html
//	  fragments/  bodies htmx swaps on their own, e.g. fragments/table.html
//
// Every page is parsed on a clone of layouts + partials, so pages can each
// define "title" and "content" without clashing. A full page calls
// {{template "base" .}}; dialogs and fragments render bare.
//
// In debug mode the tree is re-parsed on every render so edits show up on
// reload. Otherwise it is parsed once in NewTemplateRenderer.
type TemplateRenderer struct {
	pages   map[string]*template.Template
	fs      fs.FS
	funcMap template.FuncMap
	debug   bool
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a TemplateRenderer over fsys, which must hold
// the templates/ directory. Outside debug mode a parse error fails here
// rather than on the first request.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	if fsys == nil {
		return nil, errors.New("template filesystem is nil")
	}
	r := &TemplateRenderer{
		fs:      fsys,
		funcMap: templateFuncMap(),
		debug:   debug,
	}
	if !debug {
		pages, err := r.parse()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		r.pages = pages
	}
	return r, nil
}

// Instance implements render.HTMLRender. name is relative to templates/,
// e.g. "slots/admin.html".
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	pages := r.pages
	if r.debug {
		var err error
		if pages, err = r.parse(); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: pages[name], Name: name, Data: data}
}

func (r *TemplateRenderer) parse() (map[string]*template.Template, error) {
	base := template.New("").Funcs(r.funcMap)
	for _, pattern := range []string{"templates/layouts/*.html", "templates/partials/*.html"} {
		files, err := fs.Glob(r.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, f := range files {
			if err := parseInto(base, r.fs, f, f); err != nil {
				return nil, err
			}
		}
	}

	pages := map[string]*template.Template{}
	err := fs.WalkDir(r.fs, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		name := strings.TrimPrefix(path, "templates/")
		if strings.HasPrefix(name, "layouts/") || strings.HasPrefix(name, "partials/") {
			return nil
		}
		set, err := base.Clone()
		if err != nil {
			return fmt.Errorf("clone base for %s: %w", name, err)
		}
		if err := parseInto(set, r.fs, path, name); err != nil {
			return err
		}
		pages[name] = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func parseInto(set *template.Template, fsys fs.FS, path, name string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := set.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// json embeds v in a script or attribute context.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},
		"formatDate": func(t time.Time) string { return page.FormatDate(t) },
		"money":      page.Money,
		// badge takes any string-like status, e.g. domain.OrderStatus.
		"badge": func(status any) template.HTML {
			s := fmt.Sprint(status)
			return page.Badge(s, page.StatusTone(s))
		},
		"lower": strings.ToLower,

		// fieldError looks up a field message; errs may be nil.
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},

		// dict passes several named values to a partial:
		// {{template "field" dict "Name" "email" "Label" "Email" "Form" .}}
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, errors.New("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},

		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// HTMLInstance executes one page. It implements render.Render.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

const htmlContentType = "text/html; charset=utf-8"

// Render writes the page, or the parse error found while loading it.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets an HTML content type unless one is already set.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{htmlContentType}
	}
}
