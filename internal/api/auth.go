package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Auth accesses the /auth endpoints. None of them need a bearer token.
type Auth struct{ c *Client }

// Auth returns the authentication resource.
func (c *Client) Auth() Auth { return Auth{c: c} }

func (r Auth) Login(ctx context.Context, in domain.Credentials) (*domain.LoginResult, error) {
	res, err := item[domain.LoginResult](ctx, r.c, http.MethodPost, "/auth/login", []string{"auth", "login"}, in)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, domain.NewServerRejected(http.StatusOK, "login response did not include a token")
	}
	return res, nil
}

func (r Auth) Register(ctx context.Context, in domain.RegisterInput) error {
	return call(ctx, r.c, http.MethodPost, "/auth/register", []string{"auth", "register"}, in)
}

func (r Auth) SendResetPasswordEmail(ctx context.Context, in domain.EmailInput) error {
	return call(ctx, r.c, http.MethodPost, "/auth/send-reset-password-email", []string{"auth", "send-reset-password-email"}, in)
}

func (r Auth) ResetPassword(ctx context.Context, token string, in domain.ResetPasswordInput) error {
	if err := requireID(token); err != nil {
		return err
	}
	body := struct {
		Password string `json:"password"`
	}{Password: in.Password}
	return call(ctx, r.c, http.MethodPost, "/auth/reset-password/:token", []string{"auth", "reset-password", token}, body)
}

func (r Auth) VerifyEmail(ctx context.Context, token string, in domain.EmailInput) error {
	if err := requireID(token); err != nil {
		return err
	}
	return call(ctx, r.c, http.MethodPost, "/auth/verify-email/:token", []string{"auth", "verify-email", token}, in)
}

func (r Auth) SendVerificationEmail(ctx context.Context, in domain.EmailInput) error {
	return call(ctx, r.c, http.MethodPost, "/auth/send-verification-email", []string{"auth", "send-verification-email"}, in)
}
