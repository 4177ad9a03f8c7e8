// Package session owns the authenticated-user context of each browser.
//
// A Session is either Unauthenticated or Authenticated(user, token). The
// Manager restores it from a cookie on every request, creates it at login
// and tears it down at logout or when the backend token stops being
// accepted. Each authenticated session gets its own query cache.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Session is the per-browser auth state. The zero value is unauthenticated.
type Session struct {
	id        string
	user      *domain.User
	token     string
	expiresAt time.Time
}

// Unauthenticated returns the anonymous session.
func Unauthenticated() Session {
	return Session{}
}

// Authenticated returns a signed-in session.
func Authenticated(id string, user domain.User, token string, expiresAt time.Time) Session {
	return Session{id: id, user: &user, token: token, expiresAt: expiresAt}
}

// IsAuthenticated reports whether s carries a user and a token.
func (s Session) IsAuthenticated() bool {
	return s.user != nil && s.token != ""
}

// ID is the opaque session identifier stored in the cookie.
func (s Session) ID() string { return s.id }

// Token is the backend bearer token; empty when unauthenticated.
func (s Session) Token() string { return s.token }

// ExpiresAt is when the session stops being valid.
func (s Session) ExpiresAt() time.Time { return s.expiresAt }

// User returns the signed-in user.
func (s Session) User() (domain.User, bool) {
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// UserID returns the signed-in user's id, or "".
func (s Session) UserID() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// IsAdmin reports whether the signed-in user is an admin.
func (s Session) IsAdmin() bool {
	return s.user != nil && s.user.IsAdmin()
}

// Expired reports whether s has passed its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// HomePath is where a user lands after login.
func HomePath(u domain.User) string {
	if u.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}

// TokenExpiry reads the exp claim of a backend JWT without verifying it.
// The signature is the backend's business; the expiry only lets the session
// end with the token instead of waiting for the first 401.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
