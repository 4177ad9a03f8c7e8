package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
)

// Sessions starts and ends browser sessions.
type Sessions interface {
	Login(c *gin.Context, res *domain.LoginResult) (session.Session, error)
	Logout(c *gin.Context)
}

// Notices shown on the login page after a redirect, keyed by the notice
// query parameter.
const (
	NoticeRegistered       = "registered"
	NoticeResetSent        = "reset-sent"
	NoticePasswordReset    = "password-reset"
	NoticeVerified         = "verified"
	NoticeVerificationSent = "verification-sent"
	NoticeSignedOut        = "signed-out"
)

var notices = map[string]string{
	NoticeRegistered:       "Account created. Check your inbox to verify your email, then sign in.",
	NoticeResetSent:        "If that address has an account, a reset link is on its way.",
	NoticePasswordReset:    "Password changed. Sign in with your new password.",
	NoticeVerified:         "Email verified. You can sign in now.",
	NoticeVerificationSent: "A new verification email has been sent.",
	NoticeSignedOut:        "You have been signed out.",
}

const (
	loginTemplate    = "auth/login.html"
	registerTemplate = "auth/register.html"
	forgotTemplate   = "auth/forgot_password.html"
	resetTemplate    = "auth/reset_password.html"
	verifyTemplate   = "auth/verify_email.html"
	resendTemplate   = "auth/resend_verification.html"
)

// PageHandler serves the sign-in and account recovery pages.
type PageHandler struct {
	auth     domain.AuthService
	sessions Sessions
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(auth domain.AuthService, sessions Sessions) *PageHandler {
	return &PageHandler{auth: auth, sessions: sessions}
}

// LoginRedirect is the login URL carrying notice.
func LoginRedirect(notice string) string {
	return session.LoginPath + "?" + url.Values{"notice": {notice}}.Encode()
}

// signedIn sends a signed-in browser to its home page and reports whether
// it did.
func signedIn(c *gin.Context) bool {
	u, ok := session.Current(c).User()
	if !ok || !session.Current(c).IsAuthenticated() {
		return false
	}
	pkg.Redirect(c, session.HomePath(u))
	return true
}

func renderForm(c *gin.Context, status int, name string, form any, errs map[string]string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Form"] = form
	data["Errors"] = errs
	page.Render(c, status, name, data)
}

// Root sends the browser to its home page or to the login page.
// GET /
func (h *PageHandler) Root(c *gin.Context) {
	if signedIn(c) {
		return
	}
	c.Redirect(http.StatusSeeOther, session.LoginPath)
}

// LoginPage renders the login form.
// GET /login
func (h *PageHandler) LoginPage(c *gin.Context) {
	if signedIn(c) {
		return
	}
	renderForm(c, http.StatusOK, loginTemplate, domain.Credentials{}, nil, gin.H{
		"Title":  "Sign in",
		"Notice": notices[c.Query("notice")],
	})
}

// Login signs the user in and sends them to their home page.
// POST /login
func (h *PageHandler) Login(c *gin.Context) {
	var in domain.Credentials
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		res, err := h.auth.Login(c.Request.Context(), in)
		if err == nil {
			_, err = h.sessions.Login(c, res)
		}
		if err == nil {
			pkg.Redirect(c, session.HomePath(res.User))
			return
		}
		if domain.IsUnauthorized(err) {
			errs = map[string]string{pkg.FormErrorKey: "Invalid email or password."}
		} else {
			errs = pkg.FormErrors(err, "Could not sign in. Please try again.")
		}
	}
	in.Password = ""
	renderForm(c, page.FormStatus(c), loginTemplate, in, errs, gin.H{"Title": "Sign in", "Notice": ""})
}

// Logout ends the session.
// POST /logout
func (h *PageHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	pkg.Redirect(c, LoginRedirect(NoticeSignedOut))
}

// RegisterPage renders the sign-up form.
// GET /register
func (h *PageHandler) RegisterPage(c *gin.Context) {
	if signedIn(c) {
		return
	}
	renderForm(c, http.StatusOK, registerTemplate, domain.RegisterInput{}, nil, gin.H{"Title": "Create account"})
}

// Register creates an account. The user signs in after verifying their email.
// POST /register
func (h *PageHandler) Register(c *gin.Context) {
	var in domain.RegisterInput
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		err := h.auth.Register(c.Request.Context(), in)
		if err == nil {
			pkg.Redirect(c, LoginRedirect(NoticeRegistered))
			return
		}
		errs = pkg.FormErrors(err, "Could not create your account.")
	}
	in.Password = ""
	renderForm(c, page.FormStatus(c), registerTemplate, in, errs, gin.H{"Title": "Create account"})
}

// ForgotPasswordPage renders the reset request form.
// GET /forgot-password
func (h *PageHandler) ForgotPasswordPage(c *gin.Context) {
	renderForm(c, http.StatusOK, forgotTemplate, domain.EmailInput{}, nil, gin.H{"Title": "Forgot password"})
}

// ForgotPassword mails a reset link. Unknown addresses look the same as
// known ones.
// POST /forgot-password
func (h *PageHandler) ForgotPassword(c *gin.Context) {
	var in domain.EmailInput
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		err := h.auth.SendResetPasswordEmail(c.Request.Context(), in)
		if err == nil || domain.IsNotFound(err) {
			pkg.Redirect(c, LoginRedirect(NoticeResetSent))
			return
		}
		errs = pkg.FormErrors(err, "Could not send the reset email.")
	}
	renderForm(c, page.FormStatus(c), forgotTemplate, in, errs, gin.H{"Title": "Forgot password"})
}

// ResetPasswordPage renders the new password form for a mailed token.
// GET /reset-password/:token
func (h *PageHandler) ResetPasswordPage(c *gin.Context) {
	renderForm(c, http.StatusOK, resetTemplate, domain.ResetPasswordInput{}, nil, gin.H{
		"Title": "Reset password",
		"Token": c.Param("token"),
	})
}

// ResetPassword sets a new password.
// POST /reset-password/:token
func (h *PageHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")
	var in domain.ResetPasswordInput
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		err := h.auth.ResetPassword(c.Request.Context(), token, in)
		if err == nil {
			pkg.Redirect(c, LoginRedirect(NoticePasswordReset))
			return
		}
		errs = pkg.FormErrors(err, "This reset link is invalid or has expired.")
	}
	renderForm(c, page.FormStatus(c), resetTemplate, domain.ResetPasswordInput{}, errs, gin.H{
		"Title": "Reset password",
		"Token": token,
	})
}

// VerifyEmailPage asks for the address the verification token was sent to.
// GET /verify-email/:token
func (h *PageHandler) VerifyEmailPage(c *gin.Context) {
	renderForm(c, http.StatusOK, verifyTemplate, domain.EmailInput{Email: c.Query("email")}, nil, gin.H{
		"Title": "Verify email",
		"Token": c.Param("token"),
	})
}

// VerifyEmail confirms the address.
// POST /verify-email/:token
func (h *PageHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	var in domain.EmailInput
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		err := h.auth.VerifyEmail(c.Request.Context(), token, in)
		if err == nil {
			pkg.Redirect(c, LoginRedirect(NoticeVerified))
			return
		}
		errs = pkg.FormErrors(err, "This verification link is invalid or has expired.")
	}
	renderForm(c, page.FormStatus(c), verifyTemplate, in, errs, gin.H{
		"Title": "Verify email",
		"Token": token,
	})
}

// ResendVerificationPage renders the resend form.
// GET /resend-verification
func (h *PageHandler) ResendVerificationPage(c *gin.Context) {
	renderForm(c, http.StatusOK, resendTemplate, domain.EmailInput{Email: c.Query("email")}, nil, gin.H{
		"Title": "Resend verification",
	})
}

// ResendVerification mails a new verification link.
// POST /resend-verification
func (h *PageHandler) ResendVerification(c *gin.Context) {
	var in domain.EmailInput
	errs, ok := pkg.BindForm(c, &in)
	if ok {
		err := h.auth.SendVerificationEmail(c.Request.Context(), in)
		if err == nil {
			pkg.Redirect(c, LoginRedirect(NoticeVerificationSent))
			return
		}
		errs = pkg.FormErrors(err, "Could not send the verification email.")
	}
	renderForm(c, page.FormStatus(c), resendTemplate, in, errs, gin.H{"Title": "Resend verification"})
}
