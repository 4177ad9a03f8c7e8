package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/domain"
)

func (s *Service) ListParkings(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Parking]] {
	return Read(ctx, s.cache, K(rootParkings, "list", pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.Parking], error) {
		return s.client.Parkings().List(ctx, req)
	})
}

func (s *Service) GetParking(ctx context.Context, id string) domain.Result[domain.Parking] {
	return Read(ctx, s.cache, K(rootParking, id), id != "", func(ctx context.Context) (domain.Parking, error) {
		p, err := s.client.Parkings().Get(ctx, id)
		if err != nil {
			return domain.Parking{}, err
		}
		return *p, nil
	})
}
