package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/domain"
)

func (s *Service) ListVehicles(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]] {
	return Read(ctx, s.cache, K(rootVehicles, "list", pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.Vehicle], error) {
		return s.client.Vehicles().List(ctx, req)
	})
}

func (s *Service) ListMyVehicles(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]] {
	return Read(ctx, s.cache, K(rootUserVehicles, pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.Vehicle], error) {
		return s.client.Vehicles().ListMine(ctx, req)
	})
}

func (s *Service) GetVehicle(ctx context.Context, id string) domain.Result[domain.Vehicle] {
	return Read(ctx, s.cache, K(rootVehicle, id), id != "", func(ctx context.Context) (domain.Vehicle, error) {
		v, err := s.client.Vehicles().Get(ctx, id)
		if err != nil {
			return domain.Vehicle{}, err
		}
		return *v, nil
	})
}

func (s *Service) GetVehicleByPlate(ctx context.Context, plate string) domain.Result[domain.Vehicle] {
	return Read(ctx, s.cache, K(rootVehicle, "plate", plate), plate != "", func(ctx context.Context) (domain.Vehicle, error) {
		v, err := s.client.Vehicles().GetByPlate(ctx, plate)
		if err != nil {
			return domain.Vehicle{}, err
		}
		return *v, nil
	})
}

func (s *Service) CreateVehicle(ctx context.Context, in domain.VehicleInput) (*domain.Vehicle, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, createVehicle, "", func(ctx context.Context) (*domain.Vehicle, error) {
		return s.client.Vehicles().Create(ctx, in)
	})
}

func (s *Service) UpdateVehicle(ctx context.Context, id string, in domain.UpdateVehicleInput) (*domain.Vehicle, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, updateVehicle, id, func(ctx context.Context) (*domain.Vehicle, error) {
		return s.client.Vehicles().Update(ctx, id, in)
	})
}

func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	_, err := Run(ctx, s.cache, deleteVehicle, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.Vehicles().Delete(ctx, id)
	})
	return err
}
