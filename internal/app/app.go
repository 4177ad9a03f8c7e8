package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/config"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/middleware"
	"github.com/simp-lee/parkdash/internal/module/auth"
	"github.com/simp-lee/parkdash/internal/module/dashboard"
	"github.com/simp-lee/parkdash/internal/module/order"
	"github.com/simp-lee/parkdash/internal/module/slot"
	"github.com/simp-lee/parkdash/internal/module/user"
	"github.com/simp-lee/parkdash/internal/module/vehicle"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
	"github.com/simp-lee/parkdash/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// skipAccessLog are paths too noisy for the access log.
var skipAccessLog = []string{"/static/", "/metrics", "/health"}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the session database, the API client, the session
// manager, middleware, template rendering and the page modules.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.OpenDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := config.CloseDatabase(db); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	store := session.NewStore(db)
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.Migrate(migrateCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      config.Duration(cfg.API.Timeout, 15*time.Second),
		MaxIdleConns: cfg.API.MaxIdleConns,
		Logger:       log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("setup api client: %w", err)
	}

	mgr, err := session.NewManager(store, client, session.Config{
		CookieName:    cfg.Session.CookieName,
		TTL:           config.Duration(cfg.Session.TTL, 24*time.Hour),
		Secure:        cfg.Session.Secure,
		MaxWorkspaces: cfg.Cache.MaxSessions,
		CacheEntries:  cfg.Cache.MaxEntries,
	}, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup sessions: %w", err)
	}

	pkg.InstallValidator()
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	global := []gin.HandlerFunc{
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.LoggerWithConfig(log.Logger, middleware.LoggerConfig{SkipPrefixes: skipAccessLog}),
		middleware.Metrics(),
	}
	if cfg.Server.Gzip {
		global = append(global, gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	}
	engine.Use(global...)

	debug := cfg.Server.Mode == gin.DebugMode
	var fsys fs.FS = web.EmbeddedFS
	if debug {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    Modules(mgr),
		Sessions:   mgr,
		DB:         db,
		API:        client,
		Mode:       cfg.Server.Mode,
		CSRFSecret: cfg.Server.CSRFSecret,
		Secure:     cfg.Session.Secure,
		RateLimit:  cfg.Server.RateLimit,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	log.Info("app initialized",
		slog.String("mode", cfg.Server.Mode),
		slog.String("api", client.BaseURL()),
		slog.String("database", cfg.Database.Driver),
	)

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Modules builds every page module on top of the session manager. Data
// handlers resolve their services per request so each session reads
// through its own cache.
func Modules(mgr *session.Manager) []Module {
	tracker := mgr.Tracker
	return []Module{
		auth.NewModule(auth.NewPageHandler(mgr.Auth(), mgr)),
		dashboard.NewModule(dashboard.NewPageHandler(func(c *gin.Context) dashboard.Services { return mgr.Services(c) })),
		slot.NewModule(slot.NewPageHandler(func(c *gin.Context) slot.Services { return mgr.Services(c) }, tracker)),
		vehicle.NewModule(vehicle.NewPageHandler(func(c *gin.Context) domain.VehicleService { return mgr.Services(c) }, tracker)),
		order.NewModule(order.NewPageHandler(func(c *gin.Context) domain.OrderService { return mgr.Services(c) }, tracker)),
		user.NewModule(user.NewPageHandler(func(c *gin.Context) user.Services { return mgr.Services(c) }, tracker)),
	}
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It shuts down gracefully with a 5-second timeout, then closes the session
// database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.Duration(a.cfg.Server.Timeout, 30*time.Second))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if err := config.CloseDatabase(a.db); err != nil {
			log.Error("database close error", slog.Any("error", err))
		} else {
			log.Info("database connection closed")
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}
