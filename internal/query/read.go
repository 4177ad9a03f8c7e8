package query

import (
	"context"
	"fmt"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Read returns the cached value for key, fetching it when absent.
//
// When enabled is false the read is skipped and a Disabled result is
// returned without calling fetch. Concurrent reads of one key share a single
// fetch. A read that starts after an invalidation of a covering prefix
// always fetches again.
func Read[T any](ctx context.Context, c *Cache, key Key, enabled bool, fetch func(context.Context) (T, error)) domain.Result[T] {
	if !enabled {
		reads.WithLabelValues("disabled").Inc()
		return domain.Disabled[T]()
	}

	ks := key.String()
	if v, ok := c.lookup(ks); ok {
		if t, ok := v.(T); ok {
			reads.WithLabelValues("hit").Inc()
			return domain.Ok(t)
		}
	}
	reads.WithLabelValues("miss").Inc()

	v, err := c.fetch(ctx, ks, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return domain.Fail[T](err)
	}
	t, ok := v.(T)
	if !ok {
		return domain.Fail[T](domain.NewAppError(domain.CodeInternal, fmt.Sprintf("cached value for %s has type %T", ks, v), nil))
	}
	return domain.Ok(t)
}
