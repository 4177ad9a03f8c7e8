package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/simp-lee/parkdash/internal/config"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/middleware"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
	"github.com/simp-lee/parkdash/web"
)

// Prober reports whether the upstream API answers.
type Prober interface {
	Reachable(ctx context.Context) bool
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules    []Module
	Sessions   *session.Manager
	DB         *gorm.DB
	API        Prober
	Mode       string // "debug", "release" or "test"
	CSRFSecret string
	// Secure marks the CSRF cookie HTTPS-only, like the session cookie.
	Secure    bool
	RateLimit config.RateLimitConfig
}

// machinePaths skip sessions and CSRF.
var machinePaths = []string{"/metrics", "/health", "/static/"}

// RegisterRoutes registers all application routes on the given gin.Engine.
//
// Static files, /metrics and /health are served without a session. Every
// other route restores the session, is rate limited per user or client IP,
// has its Unauthorized errors turned into a logout, and is CSRF protected.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Sessions == nil {
		return errors.New("session manager is required")
	}
	if strings.TrimSpace(deps.CSRFSecret) == "" {
		return errors.New("csrf secret is required")
	}

	if err := registerStaticRoutes(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", healthHandler(deps.DB, deps.API))

	chain := []gin.HandlerFunc{deps.Sessions.Load()}
	if deps.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst,
			middleware.KeyByUserOrIP(func(c *gin.Context) string { return session.Current(c).UserID() }))
		chain = append(chain, limiter.Handler())
	}
	chain = append(chain,
		deps.Sessions.Guard(),
		middleware.CSRF(middleware.CSRFConfig{
			Secret:         deps.CSRFSecret,
			Secure:         deps.Secure,
			ExemptPrefixes: machinePaths,
		}),
	)

	site := r.Group("/", chain...)
	routes := page.Routes{
		Public: site,
		User:   site.Group("/", deps.Sessions.RequireAuth()),
		Admin:  site.Group("/admin", deps.Sessions.RequireRole(domain.RoleAdmin)),
	}
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(routes)
	}

	r.NoRoute(deps.Sessions.Load(), noRouteHandler())
	return nil
}

// healthHandler pings the session database and the upstream API. Only the
// database decides the status code; an unreachable API is reported but the
// dashboard itself is still up.
func healthHandler(db *gorm.DB, upstream Prober) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if db == nil || config.PingDatabase(ctx, db) != nil {
			dbStatus = "error"
		}
		apiReachable := upstream != nil && upstream.Reachable(ctx)

		report := gin.H{
			"status": "ok",
			"components": gin.H{
				"database":      dbStatus,
				"api_reachable": apiReachable,
			},
		}
		if dbStatus != "ok" {
			report["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, pkg.Response{
				Code:    http.StatusServiceUnavailable,
				Message: "degraded",
				Data:    report,
			})
			return
		}
		pkg.Success(c, report)
	}
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
	}
}

func registerStaticRoutes(r *gin.Engine, mode string) error {
	if mode == gin.DebugMode {
		debugStaticFS, err := resolveDebugStaticFS()
		if err != nil {
			return fmt.Errorf("resolve debug static filesystem: %w", err)
		}
		fileServer := http.StripPrefix("/static", http.FileServer(http.FS(debugStaticFS)))
		r.GET("/static/*filepath", func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
		return nil
	}

	staticFS, err := fs.Sub(web.EmbeddedFS, "static")
	if err != nil {
		return fmt.Errorf("create sub filesystem for static assets: %w", err)
	}
	r.GET("/static/*filepath", cacheStaticHandler(http.FS(staticFS)))
	return nil
}

func resolveDebugStaticFS() (fs.FS, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("resolve current file path")
	}

	projectRoot := filepath.Clean(filepath.Join(filepath.Dir(currentFile), "..", ".."))
	staticDir := filepath.Join(projectRoot, "web", "static")
	if _, err := os.Stat(staticDir); err != nil {
		return nil, fmt.Errorf("stat static directory %q: %w", staticDir, err)
	}

	return os.DirFS(staticDir), nil
}

// cacheStaticHandler serves embedded assets with a one-day cache lifetime.
func cacheStaticHandler(fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
