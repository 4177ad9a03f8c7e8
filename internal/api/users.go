package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Users accesses /user.
type Users struct{ c *Client }

// Users returns the user resource.
func (c *Client) Users() Users { return Users{c: c} }

func (r Users) List(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.User], error) {
	return list[domain.User](ctx, r.c, "/user", []string{"user"}, req)
}

func (r Users) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.User](ctx, r.c, http.MethodGet, "/user/:id", []string{"user", id}, nil)
}

func (r Users) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	return item[domain.User](ctx, r.c, http.MethodPost, "/user", []string{"user"}, in)
}

// Update replaces the mutable fields with PUT; zero fields are omitted from the body.
func (r Users) Update(ctx context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.User](ctx, r.c, http.MethodPut, "/user/:id", []string{"user", id}, in)
}

func (r Users) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return call(ctx, r.c, http.MethodDelete, "/user/:id", []string{"user", id}, nil)
}
