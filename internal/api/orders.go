package api

import (
	"context"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Orders accesses /parkingSlot-orders.
type Orders struct{ c *Client }

// Orders returns the slot-order resource.
func (c *Client) Orders() Orders { return Orders{c: c} }

func (r Orders) List(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.SlotOrder], error) {
	return list[domain.SlotOrder](ctx, r.c, "/parkingSlot-orders", []string{"parkingSlot-orders"}, req)
}

func (r Orders) ListByUser(ctx context.Context, userID string, req domain.PageRequest) (domain.Envelope[domain.SlotOrder], error) {
	if err := requireID(userID); err != nil {
		return domain.Envelope[domain.SlotOrder]{}, err
	}
	return list[domain.SlotOrder](ctx, r.c, "/parkingSlot-orders/user/:userId", []string{"parkingSlot-orders", "user", userID}, req)
}

func (r Orders) Get(ctx context.Context, id string) (*domain.SlotOrder, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.SlotOrder](ctx, r.c, http.MethodGet, "/parkingSlot-orders/:id", []string{"parkingSlot-orders", id}, nil)
}

func (r Orders) Create(ctx context.Context, in domain.CreateOrderInput) (*domain.SlotOrder, error) {
	return item[domain.SlotOrder](ctx, r.c, http.MethodPost, "/parkingSlot-orders", []string{"parkingSlot-orders"}, in)
}

// UpdateStatus requests a status transition. Legality of the transition is
// decided by the backend; a refusal comes back as ServerRejected.
func (r Orders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.SlotOrder, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	body := domain.UpdateOrderStatusInput{Status: status}
	return item[domain.SlotOrder](ctx, r.c, http.MethodPatch, "/parkingSlot-orders/:id/status", []string{"parkingSlot-orders", id, "status"}, body)
}

func (r Orders) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return call(ctx, r.c, http.MethodDelete, "/parkingSlot-orders/:id", []string{"parkingSlot-orders", id}, nil)
}
