package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

func list[T any](ctx context.Context, c *Client, route string, path []string, req domain.PageRequest, filters ...string) (domain.Envelope[T], error) {
	var resp listResponse[T]
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  route,
		path:   path,
		query:  listQuery(req, filters...),
	}, &resp)
	if err != nil {
		return domain.Envelope[T]{}, err
	}
	return normalizeList(resp, req), nil
}

func item[T any](ctx context.Context, c *Client, method, route string, path []string, body any) (*T, error) {
	var resp itemResponse[T]
	if err := c.do(ctx, request{method: method, route: route, path: path, body: body}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func call(ctx context.Context, c *Client, method, route string, path []string, body any) error {
	return c.do(ctx, request{method: method, route: route, path: path, body: body}, nil)
}

func requireID(id string) error {
	if id == "" {
		return domain.NewAppError(domain.CodeValidation, "id is required", nil)
	}
	return nil
}
