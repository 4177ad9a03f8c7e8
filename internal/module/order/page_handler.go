package order

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/module/slot"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

const (
	AdminPath = "/admin/orders"
	MyPath    = "/orders"

	adminDialogPath = AdminPath + "/dialog"
	myDialogPath    = MyPath + "/dialog"

	TableID   = "orders"
	MyTableID = "my-orders"
)

// PageHandler serves the admin order pages and the customer's order history.
type PageHandler struct {
	services func(*gin.Context) domain.OrderService
	tracker  func(*gin.Context) *table.Tracker
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(services func(*gin.Context) domain.OrderService, tracker func(*gin.Context) *table.Tracker) *PageHandler {
	return &PageHandler{services: services, tracker: tracker}
}

func slotNumber(o domain.SlotOrder) string {
	if o.ParkingSlot != nil && o.ParkingSlot.ParkingSlotNumber != "" {
		return o.ParkingSlot.ParkingSlotNumber
	}
	return o.ParkingSlotID
}

func plate(o domain.SlotOrder) string {
	if o.ParkingSlotVehicle != nil {
		return o.ParkingSlotVehicle.VehiclePlateNumber
	}
	return "-"
}

func columns(actions func(domain.SlotOrder) template.HTML) []table.Column[domain.SlotOrder] {
	return []table.Column[domain.SlotOrder]{
		{Key: "parkingSlotId", Header: "Slot", Value: slotNumber},
		{Key: "vehiclePlateNumber", Header: "Vehicle", Value: plate},
		{Key: "hours", Header: "Hours", Sortable: true, Value: func(o domain.SlotOrder) string { return strconv.FormatFloat(o.Hours, 'f', -1, 64) }},
		{Key: "total", Header: "Total", Value: func(o domain.SlotOrder) string { return page.Money(o.Total()) }},
		{Key: "parkingSlotOrderStatus", Header: "Status", Sortable: true, HTML: func(o domain.SlotOrder) template.HTML {
			return page.Badge(string(o.ParkingSlotOrderStatus), page.StatusTone(string(o.ParkingSlotOrderStatus)))
		}},
		{Key: "createdAt", Header: "Created", Sortable: true, Value: func(o domain.SlotOrder) string { return page.FormatDate(o.CreatedAt) }},
		{Header: "", HTML: actions},
	}
}

func adminTable() *table.Table[domain.SlotOrder] {
	return &table.Table[domain.SlotOrder]{
		ID:   TableID,
		Path: AdminPath,
		Columns: columns(func(o domain.SlotOrder) template.HTML {
			return page.Buttons(
				page.DialogButton(page.DialogURL(adminDialogPath, ui.DialogDetail, o.ID), "Manage", "btn-ghost"),
				page.DialogButton(page.DialogURL(adminDialogPath, ui.DialogDelete, o.ID), "Delete", "btn-danger"),
			)
		}),
		SearchPlaceholder: "Search orders...",
	}
}

func myTable() *table.Table[domain.SlotOrder] {
	return &table.Table[domain.SlotOrder]{
		ID:   MyTableID,
		Path: MyPath,
		Columns: columns(func(o domain.SlotOrder) template.HTML {
			return page.DialogButton(page.DialogURL(myDialogPath, ui.DialogDetail, o.ID), "Details", "btn-ghost")
		}),
		SearchPlaceholder: "Search orders...",
	}
}

// List renders every order.
// GET /admin/orders
func (h *PageHandler) List(c *gin.Context) {
	page.ServeTable(c, h.tracker(c), adminTable(), h.services(c).ListOrders, "orders/admin.html", gin.H{
		"Title": "Slot orders",
	})
}

// Mine renders the caller's orders.
// GET /orders
func (h *PageHandler) Mine(c *gin.Context) {
	svc := h.services(c)
	userID := session.Current(c).UserID()
	load := func(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]] {
		return svc.ListUserOrders(ctx, userID, req)
	}
	page.ServeTable(c, h.tracker(c), myTable(), load, "orders/mine.html", gin.H{
		"Title": "My orders",
	})
}

// Dialog renders the admin order dialogs.
// GET /admin/orders/dialog
func (h *PageHandler) Dialog(c *gin.Context) {
	d, ok := page.OpenDialog(c, adminDialogPath)
	if !ok {
		page.CloseDialog(c)
		return
	}
	o, err := page.Require(h.services(c).GetOrder(c.Request.Context(), d.Top.Payload))
	if err != nil {
		page.Fail(c, err, "Could not load the order.")
		return
	}
	switch d.Top.Kind {
	case ui.DialogDetail:
		page.RenderDialog(c, "orders/manage_dialog.html", d, gin.H{
			"Order":       o,
			"Transitions": transitions(o.ParkingSlotOrderStatus),
		})
	case ui.DialogDelete:
		page.RenderDialog(c, "orders/delete_dialog.html", d, gin.H{"Order": o})
	default:
		page.Fail(c, domain.ErrNotFound, "This dialog no longer exists.")
	}
}

// MyDialog renders the details of one of the caller's orders.
// GET /orders/dialog
func (h *PageHandler) MyDialog(c *gin.Context) {
	d, ok := page.OpenDialog(c, myDialogPath)
	if !ok || d.Top.Kind != ui.DialogDetail {
		page.CloseDialog(c)
		return
	}
	o, err := page.Require(h.services(c).GetOrder(c.Request.Context(), d.Top.Payload))
	if err != nil {
		page.Fail(c, err, "Could not load the order.")
		return
	}
	page.RenderDialog(c, "orders/detail_dialog.html", d, gin.H{"Order": o})
}

// transitions lists the statuses an administrator may request from current.
// The backend decides which are legal; only the no-op is left out.
func transitions(current domain.OrderStatus) []domain.OrderStatus {
	out := make([]domain.OrderStatus, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		if s != current && s != domain.OrderPending {
			out = append(out, s)
		}
	}
	return out
}

// UpdateStatus requests a status transition.
// PATCH /admin/orders/:id
func (h *PageHandler) UpdateStatus(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	var in domain.UpdateOrderStatusInput
	if _, ok := pkg.BindForm(c, &in); !ok {
		pkg.NoSwap(c)
		pkg.SetToast(c, "Choose a valid order status.", pkg.ToastError)
		c.Status(http.StatusOK)
		return
	}
	if _, err := h.services(c).UpdateOrderStatus(c.Request.Context(), id, in); err != nil {
		pkg.MutationFailed(c, err, "Could not update the order.")
		return
	}
	page.Done(c, "Order "+strings.ToLower(string(in.Status)),
		table.RefreshEvent(TableID),
		table.RefreshEvent(MyTableID),
		table.RefreshEvent(slot.TableID),
		table.RefreshEvent(slot.AvailableTableID),
	)
}

// Delete removes an order.
// DELETE /admin/orders/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	if err := h.services(c).DeleteOrder(c.Request.Context(), id); err != nil {
		pkg.MutationFailed(c, err, "Could not delete the order.")
		return
	}
	page.Done(c, "Order deleted", table.RefreshEvent(TableID), table.RefreshEvent(MyTableID))
}
