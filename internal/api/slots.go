package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Slot list filters understood by the backend.
const (
	FilterSlotSize   = "slotSize"
	FilterSlotStatus = "slotStatus"
)

// Slots accesses /parkingSlots.
type Slots struct{ c *Client }

// Slots returns the slot resource.
func (c *Client) Slots() Slots { return Slots{c: c} }

func (r Slots) List(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.Slot], error) {
	return list[domain.Slot](ctx, r.c, "/parkingSlots", []string{"parkingSlots"}, req, FilterSlotSize, FilterSlotStatus)
}

func (r Slots) Get(ctx context.Context, id string) (*domain.Slot, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.Slot](ctx, r.c, http.MethodGet, "/parkingSlots/:id", []string{"parkingSlots", id}, nil)
}

func (r Slots) Create(ctx context.Context, in domain.CreateSlotInput) (*domain.Slot, error) {
	return item[domain.Slot](ctx, r.c, http.MethodPost, "/parkingSlots", []string{"parkingSlots"}, in)
}

// CreateMany creates in.NumberOfSlots slots in one request. The backend
// answers either {data: [...]} or a bare array; both are accepted.
func (r Slots) CreateMany(ctx context.Context, in domain.BulkCreateSlotsInput) ([]domain.Slot, error) {
	var raw json.RawMessage
	err := r.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/parkingSlots/many",
		path:   []string{"parkingSlots", "many"},
		body:   in,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeSlotBatch(raw)
}

func decodeSlotBatch(raw json.RawMessage) ([]domain.Slot, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []domain.Slot{}, nil
	}
	var bare []domain.Slot
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var wrapped itemResponse[[]domain.Slot]
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, domain.NewNetworkFailure(err)
	}
	if wrapped.Data == nil {
		return []domain.Slot{}, nil
	}
	return wrapped.Data, nil
}

func (r Slots) Update(ctx context.Context, id string, in domain.UpdateSlotInput) (*domain.Slot, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return item[domain.Slot](ctx, r.c, http.MethodPatch, "/parkingSlots/:id", []string{"parkingSlots", id}, in)
}

func (r Slots) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return call(ctx, r.c, http.MethodDelete, "/parkingSlots/:id", []string{"parkingSlots", id}, nil)
}
