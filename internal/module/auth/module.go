package auth

import "github.com/simp-lee/parkdash/internal/module/page"

// AuthModule implements the app.Module interface for the auth pages.
type AuthModule struct {
	handler *PageHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *PageHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers the public auth pages.
func (m *AuthModule) RegisterRoutes(r page.Routes) {
	p := r.Public
	p.GET("/", m.handler.Root)
	p.GET("/login", m.handler.LoginPage)
	p.POST("/login", m.handler.Login)
	p.POST("/logout", m.handler.Logout)
	p.GET("/register", m.handler.RegisterPage)
	p.POST("/register", m.handler.Register)
	p.GET("/forgot-password", m.handler.ForgotPasswordPage)
	p.POST("/forgot-password", m.handler.ForgotPassword)
	p.GET("/reset-password/:token", m.handler.ResetPasswordPage)
	p.POST("/reset-password/:token", m.handler.ResetPassword)
	p.GET("/verify-email/:token", m.handler.VerifyEmailPage)
	p.POST("/verify-email/:token", m.handler.VerifyEmail)
	p.GET("/resend-verification", m.handler.ResendVerificationPage)
	p.POST("/resend-verification", m.handler.ResendVerification)
}
