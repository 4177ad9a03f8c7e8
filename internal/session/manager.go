package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/query"
	"github.com/simp-lee/parkdash/internal/table"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

const (
	contextKey          = "session"
	defaultCookieName   = "parkdash_session"
	defaultTTL          = 24 * time.Hour
	defaultMaxWorkspace = 1000
)

// Config configures a Manager.
type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	// MaxWorkspaces bounds how many sessions keep a live cache in memory.
	MaxWorkspaces int
	// CacheEntries bounds each session's cache.
	CacheEntries int
}

// Workspace is the in-memory state of one authenticated session.
type Workspace struct {
	Cache   *query.Cache
	Tracker *table.Tracker
}

// Manager restores, creates and tears down sessions, and hands each request
// the services bound to its session.
type Manager struct {
	store      *Store
	client     *api.Client
	cfg        Config
	logger     *slog.Logger
	mu         sync.Mutex
	workspaces *lru.Cache[string, *Workspace]
	now        func() time.Time
}

// NewManager creates a Manager.
func NewManager(store *Store, client *api.Client, cfg Config, log *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is nil")
	}
	if client == nil {
		return nil, errors.New("api client is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxWorkspaces <= 0 {
		cfg.MaxWorkspaces = defaultMaxWorkspace
	}

	workspaces, err := lru.NewWithEvict[string, *Workspace](cfg.MaxWorkspaces, func(_ string, ws *Workspace) {
		ws.Tracker.Forget()
	})
	if err != nil {
		return nil, fmt.Errorf("create workspace cache: %w", err)
	}

	return &Manager{
		store:      store,
		client:     client,
		cfg:        cfg,
		logger:     log,
		workspaces: workspaces,
		now:        time.Now,
	}, nil
}

// Current returns the session attached to c by Load.
func Current(c *gin.Context) Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Unauthenticated()
}

// Attach makes s the session of the request. Load and Login call it; tests
// use it to act as a signed-in user.
func Attach(c *gin.Context, s Session) {
	c.Set(contextKey, s)
	if s.IsAuthenticated() {
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("user_id", s.UserID()))
		c.Request = c.Request.WithContext(ctx)
	}
}

// Load restores the session from its cookie. Unknown, expired and
// token-expired sessions are torn down and the request continues
// unauthenticated.
func (m *Manager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.cfg.CookieName)
		if err != nil || id == "" {
			Attach(c, Unauthenticated())
			c.Next()
			return
		}

		sess, err := m.store.Get(c.Request.Context(), id)
		switch {
		case err != nil:
			if !domain.IsNotFound(err) {
				m.logger.ErrorContext(c.Request.Context(), "load session failed", slog.Any("error", err))
			}
			m.clearCookie(c)
			Attach(c, Unauthenticated())
		case sess.Expired(m.now()):
			m.teardown(c, id)
		default:
			Attach(c, sess)
		}
		c.Next()
	}
}

// Login starts a session for a successful backend login and sets the cookie.
// The session lasts for the configured TTL, or until the token expires if
// that is sooner.
func (m *Manager) Login(c *gin.Context, res *domain.LoginResult) (Session, error) {
	if res == nil || res.Token == "" {
		return Session{}, domain.ErrUnauthorized
	}
	ctx := c.Request.Context()

	now := m.now()
	expires := now.Add(m.cfg.TTL)
	if exp, ok := TokenExpiry(res.Token); ok {
		if !exp.After(now) {
			return Session{}, domain.ErrUnauthorized
		}
		if exp.Before(expires) {
			expires = exp
		}
	}

	// A login replaces whatever session the browser had.
	old, _ := c.Cookie(m.cfg.CookieName)
	sess := Authenticated(uuid.NewString(), res.User, res.Token, expires)
	if err := m.store.Replace(ctx, old, sess); err != nil {
		return Session{}, err
	}
	m.forget(old)
	if n, err := m.store.DeleteExpired(ctx, now); err != nil {
		m.logger.WarnContext(ctx, "purge expired sessions failed", slog.Any("error", err))
	} else if n > 0 {
		m.logger.DebugContext(ctx, "purged expired sessions", slog.Int64("count", n))
	}

	m.setCookie(c, sess.ID(), int(expires.Sub(now).Seconds()))
	Attach(c, sess)
	m.logger.InfoContext(c.Request.Context(), "user logged in",
		slog.String("user_id", res.User.ID),
		slog.String("role", string(res.User.Role)),
	)
	return sess, nil
}

// Logout ends the current session.
func (m *Manager) Logout(c *gin.Context) {
	m.teardown(c, Current(c).ID())
}

// teardown deletes the stored session, drops its cache and clears the cookie.
func (m *Manager) teardown(c *gin.Context, id string) {
	m.drop(c.Request.Context(), id)
	m.clearCookie(c)
	Attach(c, Unauthenticated())
}

func (m *Manager) drop(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.WarnContext(ctx, "delete session failed", slog.Any("error", err))
	}
	m.forget(id)
}

// forget drops the cache of session id.
func (m *Manager) forget(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	ws, ok := m.workspaces.Peek(id)
	if ok {
		m.workspaces.Remove(id)
	}
	m.mu.Unlock()
	if ok {
		ws.Cache.Clear()
	}
}

// Workspace returns the cache and tracker of s, creating them on first use.
// Unauthenticated sessions get a throwaway workspace.
func (m *Manager) Workspace(s Session) *Workspace {
	if !s.IsAuthenticated() {
		return m.newWorkspace()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ws, ok := m.workspaces.Get(s.ID()); ok {
		return ws
	}
	ws := m.newWorkspace()
	m.workspaces.Add(s.ID(), ws)
	return ws
}

func (m *Manager) newWorkspace() *Workspace {
	return &Workspace{
		Cache:   query.NewCache(m.cfg.CacheEntries, m.logger),
		Tracker: table.NewTracker(),
	}
}

// Services returns the query service of the request's session.
func (m *Manager) Services(c *gin.Context) *query.Service {
	s := Current(c)
	return query.NewService(m.Workspace(s).Cache, m.client.WithToken(s.Token()))
}

// Tracker returns the table tracker of the request's session.
func (m *Manager) Tracker(c *gin.Context) *table.Tracker {
	return m.Workspace(Current(c)).Tracker
}

// Auth returns the auth service. Auth calls carry no token.
func (m *Manager) Auth() *query.AuthService {
	return query.NewAuthService(m.client)
}

// RequireAuth redirects unauthenticated requests to the login page.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsAuthenticated() {
			pkg.Redirect(c, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets only users with role through. Signed-in users without it
// are sent to their own home page.
func (m *Manager) RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Current(c)
		u, ok := s.User()
		if !ok || !s.IsAuthenticated() {
			pkg.Redirect(c, LoginPath)
			c.Abort()
			return
		}
		if role == domain.RoleAdmin && !u.IsAdmin() {
			pkg.Redirect(c, HomePath(u))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Guard turns an Unauthorized error recorded by a handler into a session
// teardown and a redirect to the login page. Handlers record the error with
// c.Error and write no response.
func (m *Manager) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			if !domain.IsUnauthorized(e.Err) {
				continue
			}
			m.logger.InfoContext(c.Request.Context(), "backend rejected session token",
				slog.String("path", c.Request.URL.Path),
			)
			m.teardown(c, Current(c).ID())
			if !c.Writer.Written() {
				pkg.SetToast(c, "Your session has expired. Please sign in again.", pkg.ToastInfo)
				pkg.Redirect(c, LoginPath)
			}
			return
		}
	}
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, value, maxAge, "/", "", m.cfg.Secure, true)
}

func (m *Manager) clearCookie(c *gin.Context) {
	m.setCookie(c, "", -1)
}
