package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
)

// statsSampleSize is how many slots the dashboard reads to count statuses.
const statsSampleSize = 100

func (s *Service) ListSlots(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Slot]] {
	return Read(ctx, s.cache, K(rootSlots, "list", pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.Slot], error) {
		return s.client.Slots().List(ctx, req)
	})
}

func (s *Service) GetSlot(ctx context.Context, id string) domain.Result[domain.Slot] {
	return Read(ctx, s.cache, K(rootSlot, id), id != "", func(ctx context.Context) (domain.Slot, error) {
		slot, err := s.client.Slots().Get(ctx, id)
		if err != nil {
			return domain.Slot{}, err
		}
		return *slot, nil
	})
}

// SlotStats counts the first page of up to 100 slots by status. Total is the
// server's total count, so it can exceed the sum of the status counts.
func (s *Service) SlotStats(ctx context.Context) domain.Result[domain.SlotStats] {
	return Read(ctx, s.cache, K(rootDashboard, "slotStats"), true, func(ctx context.Context) (domain.SlotStats, error) {
		env, err := s.client.Slots().List(ctx, domain.PageRequest{PageSize: statsSampleSize})
		if err != nil {
			return domain.SlotStats{}, err
		}
		stats := domain.SlotStats{Total: env.TotalCount}
		for _, slot := range env.Items {
			switch slot.ParkingSlotStatus {
			case domain.SlotAvailable:
				stats.Available++
			case domain.SlotOccupied:
				stats.Occupied++
			case domain.SlotMaintenance:
				stats.Maintenance++
			}
		}
		return stats, nil
	})
}

func (s *Service) CreateSlot(ctx context.Context, in domain.CreateSlotInput) (*domain.Slot, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, createSlot, "", func(ctx context.Context) (*domain.Slot, error) {
		return s.client.Slots().Create(ctx, in)
	})
}

func (s *Service) CreateSlots(ctx context.Context, in domain.BulkCreateSlotsInput) ([]domain.Slot, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, createSlots, "", func(ctx context.Context) ([]domain.Slot, error) {
		return s.client.Slots().CreateMany(ctx, in)
	})
}

func (s *Service) UpdateSlot(ctx context.Context, id string, in domain.UpdateSlotInput) (*domain.Slot, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, updateSlot, id, func(ctx context.Context) (*domain.Slot, error) {
		return s.client.Slots().Update(ctx, id, in)
	})
}

func (s *Service) DeleteSlot(ctx context.Context, id string) error {
	_, err := Run(ctx, s.cache, deleteSlot, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.Slots().Delete(ctx, id)
	})
	return err
}

// AvailableSlots is the slot list a customer books from.
func AvailableSlots(req domain.PageRequest) domain.PageRequest {
	filters := make(map[string]string, len(req.Filters)+1)
	for k, v := range req.Filters {
		filters[k] = v
	}
	filters[api.FilterSlotStatus] = string(domain.SlotAvailable)
	req.Filters = filters
	return req
}
