package query

import (
	"context"

	"github.com/simp-lee/parkdash/internal/domain"
)

func (s *Service) ListOrders(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]] {
	return Read(ctx, s.cache, K(rootOrders, pageSegment(req)), true, func(ctx context.Context) (domain.Envelope[domain.SlotOrder], error) {
		return s.client.Orders().List(ctx, req)
	})
}

// ListUserOrders is disabled until userID is known.
func (s *Service) ListUserOrders(ctx context.Context, userID string, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]] {
	return Read(ctx, s.cache, K(rootUserOrders, userID, pageSegment(req)), userID != "", func(ctx context.Context) (domain.Envelope[domain.SlotOrder], error) {
		return s.client.Orders().ListByUser(ctx, userID, req)
	})
}

func (s *Service) GetOrder(ctx context.Context, id string) domain.Result[domain.SlotOrder] {
	return Read(ctx, s.cache, K(rootOrder, id), id != "", func(ctx context.Context) (domain.SlotOrder, error) {
		o, err := s.client.Orders().Get(ctx, id)
		if err != nil {
			return domain.SlotOrder{}, err
		}
		return *o, nil
	})
}

func (s *Service) CreateOrder(ctx context.Context, in domain.CreateOrderInput) (*domain.SlotOrder, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, createOrder, "", func(ctx context.Context) (*domain.SlotOrder, error) {
		return s.client.Orders().Create(ctx, in)
	})
}

// UpdateOrderStatus only checks that the status is a known value; whether
// the transition is allowed is left to the backend.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, in domain.UpdateOrderStatusInput) (*domain.SlotOrder, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return Run(ctx, s.cache, updateOrderStatus, id, func(ctx context.Context) (*domain.SlotOrder, error) {
		return s.client.Orders().UpdateStatus(ctx, id, in.Status)
	})
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	_, err := Run(ctx, s.cache, deleteOrder, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.Orders().Delete(ctx, id)
	})
	return err
}
