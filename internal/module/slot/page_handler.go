package slot

import (
	"context"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/query"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

// Services is what the slot pages read and write through.
type Services interface {
	domain.SlotService
	ListParkings(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Parking]]
	ListMyVehicles(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]]
	CreateOrder(ctx context.Context, in domain.CreateOrderInput) (*domain.SlotOrder, error)
}

const (
	AdminPath     = "/admin/slots"
	AvailablePath = "/slots"

	adminDialogPath = AdminPath + "/dialog"
	bookDialogPath  = AvailablePath + "/dialog"

	TableID          = "slots"
	AvailableTableID = "available-slots"

	// myOrdersTableID is the customer's order table, refreshed after a booking.
	myOrdersTableID = "my-orders"

	dialogBulk = "bulk"
	dialogBook = "book"
)

// pickerPage is the read behind the parking and vehicle pickers.
var pickerPage = domain.PageRequest{PageIndex: 0, PageSize: 100}

// PageHandler serves the admin slot pages and the customer booking pages.
type PageHandler struct {
	services func(*gin.Context) Services
	tracker  func(*gin.Context) *table.Tracker
}

// NewPageHandler creates a PageHandler. services and tracker resolve the
// session-bound collaborators of a request.
func NewPageHandler(services func(*gin.Context) Services, tracker func(*gin.Context) *table.Tracker) *PageHandler {
	return &PageHandler{services: services, tracker: tracker}
}

func adminTable() *table.Table[domain.Slot] {
	return &table.Table[domain.Slot]{
		ID:   TableID,
		Path: AdminPath,
		Columns: []table.Column[domain.Slot]{
			{Key: "parkingSlotNumber", Header: "Number", Sortable: true, Value: func(s domain.Slot) string { return s.ParkingSlotNumber }},
			{Key: "parkingSlotSize", Header: "Size", Sortable: true, Value: func(s domain.Slot) string { return string(s.ParkingSlotSize) }},
			{Key: "parkingSlotStatus", Header: "Status", Sortable: true, HTML: statusBadge},
			{Key: "createdAt", Header: "Created", Sortable: true, Value: func(s domain.Slot) string { return page.FormatDate(s.CreatedAt) }},
			{Header: "Actions", HTML: func(s domain.Slot) template.HTML {
				return page.Buttons(
					page.DialogButton(page.DialogURL(adminDialogPath, ui.DialogEdit, s.ID), "Edit", "btn-ghost"),
					page.DialogButton(page.DialogURL(adminDialogPath, ui.DialogDelete, s.ID), "Delete", "btn-danger"),
				)
			}},
		},
		Filters: []table.Filter{
			{Name: api.FilterSlotSize, Label: "Size", Options: table.EnumOptions(domain.SlotSizes)},
			{Name: api.FilterSlotStatus, Label: "Status", Options: table.EnumOptions(domain.SlotStatuses)},
		},
		SearchPlaceholder: "Search slot number...",
	}
}

func availableTable() *table.Table[domain.Slot] {
	return &table.Table[domain.Slot]{
		ID:   AvailableTableID,
		Path: AvailablePath,
		Columns: []table.Column[domain.Slot]{
			{Key: "parkingSlotNumber", Header: "Number", Sortable: true, Value: func(s domain.Slot) string { return s.ParkingSlotNumber }},
			{Key: "parkingSlotSize", Header: "Size", Sortable: true, Value: func(s domain.Slot) string { return string(s.ParkingSlotSize) }},
			{Key: "parkingSlotStatus", Header: "Status", HTML: statusBadge},
			{Header: "", HTML: func(s domain.Slot) template.HTML {
				return page.DialogButton(page.DialogURL(bookDialogPath, dialogBook, s.ID), "Book", "btn-primary")
			}},
		},
		Filters: []table.Filter{
			{Name: api.FilterSlotSize, Label: "Size", Options: table.EnumOptions(domain.SlotSizes)},
		},
		SearchPlaceholder: "Search slot number...",
	}
}

func statusBadge(s domain.Slot) template.HTML {
	return page.Badge(string(s.ParkingSlotStatus), page.StatusTone(string(s.ParkingSlotStatus)))
}

// List renders the admin slot table.
// GET /admin/slots
func (h *PageHandler) List(c *gin.Context) {
	page.ServeTable(c, h.tracker(c), adminTable(), h.services(c).ListSlots, "slots/admin.html", gin.H{
		"Title":     "Parking slots",
		"CreateURL": page.DialogURL(adminDialogPath, ui.DialogCreate, ""),
		"BulkURL":   page.DialogURL(adminDialogPath, dialogBulk, ""),
	})
}

// Dialog renders the top admin dialog.
// GET /admin/slots/dialog
func (h *PageHandler) Dialog(c *gin.Context) {
	d, ok := page.OpenDialog(c, adminDialogPath)
	if !ok {
		page.CloseDialog(c)
		return
	}
	svc := h.services(c)

	switch d.Top.Kind {
	case ui.DialogCreate:
		h.renderCreate(c, svc, d, domain.CreateSlotInput{}, nil)
	case dialogBulk:
		renderBulk(c, d, domain.BulkCreateSlotsInput{NumberOfSlots: 1}, nil)
	case ui.DialogEdit, ui.DialogDelete:
		slot, err := page.Require(svc.GetSlot(c.Request.Context(), d.Top.Payload))
		if err != nil {
			page.Fail(c, err, "Could not load the slot.")
			return
		}
		if d.Top.Kind == ui.DialogDelete {
			page.RenderDialog(c, "slots/delete_dialog.html", d, gin.H{"Slot": slot})
			return
		}
		renderEdit(c, d, slot, domain.UpdateSlotInput{SlotSize: slot.ParkingSlotSize, SlotStatus: slot.ParkingSlotStatus}, nil)
	default:
		page.Fail(c, domain.ErrNotFound, "This dialog no longer exists.")
	}
}

func (h *PageHandler) renderCreate(c *gin.Context, svc Services, d page.Dialog, form domain.CreateSlotInput, errs map[string]string) {
	data := gin.H{"Form": form, "Errors": errs, "Sizes": domain.SlotSizes, "ParkingsError": ""}
	parkings, err := svc.ListParkings(c.Request.Context(), pickerPage).Get()
	if err != nil {
		if pkg.ReadFailed(c, err) {
			return
		}
		data["ParkingsError"] = domain.UserMessage(err, "Could not load parking lots.")
	} else {
		data["Parkings"] = parkings.Items
	}
	page.RenderDialog(c, "slots/create_dialog.html", d, data)
}

func renderBulk(c *gin.Context, d page.Dialog, form domain.BulkCreateSlotsInput, errs map[string]string) {
	page.RenderDialog(c, "slots/bulk_dialog.html", d, gin.H{"Form": form, "Errors": errs, "Sizes": domain.SlotSizes})
}

func renderEdit(c *gin.Context, d page.Dialog, slot domain.Slot, form domain.UpdateSlotInput, errs map[string]string) {
	page.RenderDialog(c, "slots/edit_dialog.html", d, gin.H{
		"Slot":     slot,
		"Form":     form,
		"Errors":   errs,
		"Sizes":    domain.SlotSizes,
		"Statuses": domain.SlotStatuses,
	})
}

// Create creates one slot in a parking lot.
// POST /admin/slots
func (h *PageHandler) Create(c *gin.Context) {
	d, _ := page.OpenDialog(c, adminDialogPath)
	svc := h.services(c)

	var in domain.CreateSlotInput
	if errs, ok := pkg.BindForm(c, &in); !ok {
		h.renderCreate(c, svc, d, in, errs)
		return
	}
	slot, err := svc.CreateSlot(c.Request.Context(), in)
	if err != nil {
		if errs := page.SubmitFailed(c, err, "Could not create the slot."); errs != nil {
			h.renderCreate(c, svc, d, in, errs)
		}
		return
	}
	page.Done(c, fmt.Sprintf("Slot %s created", slot.ParkingSlotNumber), table.RefreshEvent(TableID))
}

// CreateMany creates a batch of slots of one size.
// POST /admin/slots/bulk
func (h *PageHandler) CreateMany(c *gin.Context) {
	d, _ := page.OpenDialog(c, adminDialogPath)

	var in domain.BulkCreateSlotsInput
	if errs, ok := pkg.BindForm(c, &in); !ok {
		renderBulk(c, d, in, errs)
		return
	}
	slots, err := h.services(c).CreateSlots(c.Request.Context(), in)
	if err != nil {
		if errs := page.SubmitFailed(c, err, "Could not create the slots."); errs != nil {
			renderBulk(c, d, in, errs)
		}
		return
	}
	page.Done(c, fmt.Sprintf("%d slots created", len(slots)), table.RefreshEvent(TableID))
}

// Update changes the size or status of a slot.
// PATCH /admin/slots/:id
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	d, _ := page.OpenDialog(c, adminDialogPath)
	svc := h.services(c)

	var in domain.UpdateSlotInput
	errs, valid := pkg.BindForm(c, &in)
	if valid {
		_, err := svc.UpdateSlot(c.Request.Context(), id, in)
		if err == nil {
			page.Done(c, "Slot updated", table.RefreshEvent(TableID), table.RefreshEvent(AvailableTableID))
			return
		}
		if errs = page.SubmitFailed(c, err, "Could not update the slot."); errs == nil {
			return
		}
	}

	slot, err := page.Require(svc.GetSlot(c.Request.Context(), id))
	if err != nil {
		page.Fail(c, err, "Could not load the slot.")
		return
	}
	renderEdit(c, d, slot, in, errs)
}

// Delete removes a slot.
// DELETE /admin/slots/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	if err := h.services(c).DeleteSlot(c.Request.Context(), id); err != nil {
		pkg.MutationFailed(c, err, "Could not delete the slot.")
		return
	}
	page.Done(c, "Slot deleted", table.RefreshEvent(TableID), table.RefreshEvent(AvailableTableID))
}

// Available renders the slots a customer can book.
// GET /slots
func (h *PageHandler) Available(c *gin.Context) {
	svc := h.services(c)
	load := func(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Slot]] {
		return svc.ListSlots(ctx, query.AvailableSlots(req))
	}
	page.ServeTable(c, h.tracker(c), availableTable(), load, "slots/available.html", gin.H{
		"Title": "Available slots",
	})
}

// BookDialog renders the booking dialog of a slot.
// GET /slots/dialog
func (h *PageHandler) BookDialog(c *gin.Context) {
	d, ok := page.OpenDialog(c, bookDialogPath)
	if !ok || d.Top.Kind != dialogBook {
		page.CloseDialog(c)
		return
	}
	svc := h.services(c)
	slot, err := page.Require(svc.GetSlot(c.Request.Context(), d.Top.Payload))
	if err != nil {
		page.Fail(c, err, "Could not load the slot.")
		return
	}
	h.renderBook(c, svc, d, slot, domain.CreateOrderInput{SlotID: slot.ID}, nil)
}

func (h *PageHandler) renderBook(c *gin.Context, svc Services, d page.Dialog, slot domain.Slot, form domain.CreateOrderInput, errs map[string]string) {
	data := gin.H{"Slot": slot, "Form": form, "Errors": errs, "VehiclesError": ""}
	vehicles, err := svc.ListMyVehicles(c.Request.Context(), pickerPage).Get()
	if err != nil {
		if pkg.ReadFailed(c, err) {
			return
		}
		data["VehiclesError"] = domain.UserMessage(err, "Could not load your vehicles.")
	} else {
		data["Vehicles"] = vehicles.Items
	}
	page.RenderDialog(c, "slots/book_dialog.html", d, data)
}

// Book reserves a slot for one of the caller's vehicles. Whether the slot
// can still be booked is the backend's call; its refusal is shown as is.
// POST /slots/:id/book
func (h *PageHandler) Book(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	d, _ := page.OpenDialog(c, bookDialogPath)
	svc := h.services(c)

	in := domain.CreateOrderInput{SlotID: id}
	errs, valid := pkg.BindForm(c, &in)
	in.SlotID = id
	if valid {
		_, err := svc.CreateOrder(c.Request.Context(), in)
		if err == nil {
			page.Done(c, "Slot booked", table.RefreshEvent(AvailableTableID), table.RefreshEvent(myOrdersTableID))
			return
		}
		if errs = page.SubmitFailed(c, err, "Could not book the slot."); errs == nil {
			return
		}
	}

	slot, err := page.Require(svc.GetSlot(c.Request.Context(), id))
	if err != nil {
		page.Fail(c, err, "Could not load the slot.")
		return
	}
	h.renderBook(c, svc, d, slot, in, errs)
}
