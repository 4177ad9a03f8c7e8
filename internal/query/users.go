package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/domain"
)

func (s *Service) ListUsers(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.User]] {
	return Read(ctx, s.cache, K(rootUsers, "list", pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.User], error) {
		return s.client.Users().List(ctx, req)
	})
}

func (s *Service) GetUser(ctx context.Context, id string) domain.Result[domain.User] {
	return Read(ctx, s.cache, K(rootUser, id), id != "", func(ctx context.Context) (domain.User, error) {
		u, err := s.client.Users().Get(ctx, id)
		if err != nil {
			return domain.User{}, err
		}
		return *u, nil
	})
}

func (s *Service) CreateUser(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, createUser, "", func(ctx context.Context) (*domain.User, error) {
		return s.client.Users().Create(ctx, in)
	})
}

func (s *Service) UpdateUser(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, updateUser, id, func(ctx context.Context) (*domain.User, error) {
		return s.client.Users().Update(ctx, id, in)
	})
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	_, err := Run(ctx, s.cache, deleteUser, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.Users().Delete(ctx, id)
	})
	return err
}
