package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// FilterVehicleYear filters vehicle lists by model year.
const FilterVehicleYear = "year"

// Vehicles accesses /vehicles.
type Vehicles struct{ c *Client }

// Vehicles returns the vehicle resource.
func (c *Client) Vehicles() Vehicles { return Vehicles{c: c} }

func (r Vehicles) List(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.Vehicle], error) {
	return list[domain.Vehicle](ctx, r.c, "/vehicles", []string{"vehicles"}, req, FilterVehicleYear)
}

// ListMine lists the vehicles owned by the token's user.
func (r Vehicles) ListMine(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.Vehicle], error) {
	return list[domain.Vehicle](ctx, r.c, "/vehicles/user", []string{"vehicles", "user"}, req, FilterVehicleYear)
}

func (r Vehicles) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.Vehicle](ctx, r.c, http.MethodGet, "/vehicles/:id", []string{"vehicles", id}, nil)
}

func (r Vehicles) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	if err := requireID(plate); err != nil {
		return nil, err
	}
	return item[domain.Vehicle](ctx, r.c, http.MethodGet, "/vehicles/plate_number/:plate", []string{"vehicles", "plate_number", plate}, nil)
}

func (r Vehicles) Create(ctx context.Context, in domain.VehicleInput) (*domain.Vehicle, error) {
	return item[domain.Vehicle](ctx, r.c, http.MethodPost, "/vehicles", []string{"vehicles"}, in)
}

func (r Vehicles) Update(ctx context.Context, id string, in domain.UpdateVehicleInput) (*domain.Vehicle, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.Vehicle](ctx, r.c, http.MethodPatch, "/vehicles/:id", []string{"vehicles", id}, in)
}

func (r Vehicles) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return call(ctx, r.c, http.MethodDelete, "/vehicles/:id", []string{"vehicles", id}, nil)
}
