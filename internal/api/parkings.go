package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Parkings accesses /parking.
type Parkings struct{ c *Client }

// Parkings returns the parking lot resource.
func (c *Client) Parkings() Parkings { return Parkings{c: c} }

func (r Parkings) List(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.Parking], error) {
	return list[domain.Parking](ctx, r.c, "/parking", []string{"parking"}, req)
}

func (r Parkings) Get(ctx context.Context, id string) (*domain.Parking, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.Parking](ctx, r.c, http.MethodGet, "/parking/:id", []string{"parking", id}, nil)
}
