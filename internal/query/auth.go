package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
)

// AuthService validates auth forms before they reach the network. Auth
// responses are never cached.
type AuthService struct {
	client *api.Client
}

var _ domain.AuthService = (*AuthService)(nil)

// NewAuthService creates an AuthService over an unauthenticated client.
func NewAuthService(client *api.Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Login(ctx context.Context, in domain.Credentials) (*domain.LoginResult, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return s.client.Auth().Login(ctx, in)
}

func (s *AuthService) Register(ctx context.Context, in domain.RegisterInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return s.client.Auth().Register(ctx, in)
}

func (s *AuthService) SendResetPasswordEmail(ctx context.Context, in domain.EmailInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return s.client.Auth().SendResetPasswordEmail(ctx, in)
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, in domain.ResetPasswordInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return s.client.Auth().ResetPassword(ctx, token, in)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string, in domain.EmailInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return s.client.Auth().VerifyEmail(ctx, token, in)
}

func (s *AuthService) SendVerificationEmail(ctx context.Context, in domain.EmailInput) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return s.client.Auth().SendVerificationEmail(ctx, in)
}
