package query

import (
	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
)

// Service routes every read and write of one session through its Cache.
// It is cheap to construct; build one per request from the session's cache
// and token-bound client.
type Service struct {
	cache  *Cache
	client *api.Client
}

var (
	_ domain.ParkingService = (*Service)(nil)
	_ domain.SlotService    = (*Service)(nil)
	_ domain.VehicleService = (*Service)(nil)
	_ domain.UserService    = (*Service)(nil)
	_ domain.OrderService   = (*Service)(nil)
)

// NewService creates a Service over cache and client.
func NewService(cache *Cache, client *api.Client) *Service {
	return &Service{cache: cache, client: client}
}

// Cache returns the underlying cache.
func (s *Service) Cache() *Cache {
	return s.cache
}
