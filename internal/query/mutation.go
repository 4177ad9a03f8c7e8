package query

import (
	"context"
	"log/slog"
)

// Mutation is a named write and the cache prefixes it invalidates on success.
//
// Prefixes are invalidated as declared. ByID prefixes are extended with the
// id of the record the mutation touched, so updating slot 7 invalidates
// "slot|7" but leaves other slot details cached.
type Mutation struct {
	Name     string
	Prefixes []Key
	ByID     []Key
}

// Keys returns every prefix the mutation invalidates for id.
func (m Mutation) Keys(id string) []Key {
	keys := make([]Key, 0, len(m.Prefixes)+len(m.ByID))
	keys = append(keys, m.Prefixes...)
	if id != "" {
		for _, k := range m.ByID {
			keys = append(keys, k.With(id))
		}
	}
	return keys
}

// Run performs m once through run. On success the declared prefixes are
// invalidated atomically; on failure the cache is left untouched and the
// error is returned as-is. Run never retries.
func Run[T any](ctx context.Context, c *Cache, m Mutation, id string, run func(context.Context) (T, error)) (T, error) {
	v, err := run(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "mutation failed", slog.String("mutation", m.Name), slog.Any("error", err))
		return v, err
	}
	c.Invalidate(m.Keys(id)...)
	return v, nil
}
