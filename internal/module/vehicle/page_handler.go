package vehicle

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

const (
	MyPath    = "/vehicles"
	AdminPath = "/admin/vehicles"

	myDialogPath    = MyPath + "/dialog"
	adminDialogPath = AdminPath + "/dialog"

	MyTableID = "my-vehicles"
	TableID   = "vehicles"
)

// PageHandler serves the customer's vehicle pages and the admin vehicle list.
type PageHandler struct {
	services func(*gin.Context) domain.VehicleService
	tracker  func(*gin.Context) *table.Tracker
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(services func(*gin.Context) domain.VehicleService, tracker func(*gin.Context) *table.Tracker) *PageHandler {
	return &PageHandler{services: services, tracker: tracker}
}

func baseColumns() []table.Column[domain.Vehicle] {
	return []table.Column[domain.Vehicle]{
		{Key: "vehiclePlateNumber", Header: "Plate", Sortable: true, Value: func(v domain.Vehicle) string { return v.VehiclePlateNumber }},
		{Key: "vehicleType", Header: "Type", Sortable: true, Value: func(v domain.Vehicle) string { return v.VehicleType }},
		{Key: "vehicleBrand", Header: "Brand", Sortable: true, Value: func(v domain.Vehicle) string { return v.VehicleBrand }},
		{Key: "vehicleModel", Header: "Model", Value: func(v domain.Vehicle) string { return v.VehicleModel }},
		{Key: "vehicleColor", Header: "Color", Value: func(v domain.Vehicle) string { return v.VehicleColor }},
		{Key: "vehicleYear", Header: "Year", Sortable: true, Value: func(v domain.Vehicle) string { return strconv.Itoa(v.VehicleYear) }},
	}
}

func yearFilter() table.Filter {
	return table.Filter{
		Name:    api.FilterVehicleYear,
		Label:   "Year",
		Options: table.YearOptions(domain.MinVehicleYear, domain.MaxVehicleYear()),
	}
}

func myTable() *table.Table[domain.Vehicle] {
	cols := append(baseColumns(), table.Column[domain.Vehicle]{Header: "Actions", HTML: func(v domain.Vehicle) template.HTML {
		return page.Buttons(
			page.DialogButton(page.DialogURL(myDialogPath, ui.DialogEdit, v.ID), "Edit", "btn-ghost"),
			page.DialogButton(page.DialogURL(myDialogPath, ui.DialogDelete, v.ID), "Delete", "btn-danger"),
		)
	}})
	return &table.Table[domain.Vehicle]{
		ID:                MyTableID,
		Path:              MyPath,
		Columns:           cols,
		Filters:           []table.Filter{yearFilter()},
		SearchPlaceholder: "Search plate, brand or model...",
	}
}

func adminTable() *table.Table[domain.Vehicle] {
	cols := append(baseColumns(), table.Column[domain.Vehicle]{Header: "", HTML: func(v domain.Vehicle) template.HTML {
		return page.DialogButton(page.DialogURL(adminDialogPath, ui.DialogDetail, v.ID), "View", "btn-ghost")
	}})
	return &table.Table[domain.Vehicle]{
		ID:                TableID,
		Path:              AdminPath,
		Columns:           cols,
		Filters:           []table.Filter{yearFilter()},
		SearchPlaceholder: "Search plate, brand or model...",
	}
}

// Mine renders the caller's vehicles.
// GET /vehicles
func (h *PageHandler) Mine(c *gin.Context) {
	page.ServeTable(c, h.tracker(c), myTable(), h.services(c).ListMyVehicles, "vehicles/mine.html", gin.H{
		"Title":     "My vehicles",
		"CreateURL": page.DialogURL(myDialogPath, ui.DialogCreate, ""),
	})
}

// All renders every vehicle.
// GET /admin/vehicles
func (h *PageHandler) All(c *gin.Context) {
	page.ServeTable(c, h.tracker(c), adminTable(), h.services(c).ListVehicles, "vehicles/admin.html", gin.H{
		"Title": "Vehicles",
	})
}

// Dialog renders the top dialog of the caller's vehicle pages.
// GET /vehicles/dialog
func (h *PageHandler) Dialog(c *gin.Context) {
	h.dialog(c, myDialogPath)
}

// AdminDialog renders vehicle details for administrators.
// GET /admin/vehicles/dialog
func (h *PageHandler) AdminDialog(c *gin.Context) {
	h.dialog(c, adminDialogPath)
}

func (h *PageHandler) dialog(c *gin.Context, path string) {
	d, ok := page.OpenDialog(c, path)
	if !ok {
		page.CloseDialog(c)
		return
	}
	if d.Top.Kind == ui.DialogCreate && path == myDialogPath {
		renderCreate(c, d, domain.VehicleInput{VehicleYear: domain.MaxVehicleYear() - 1}, nil)
		return
	}

	v, err := page.Require(h.services(c).GetVehicle(c.Request.Context(), d.Top.Payload))
	if err != nil {
		page.Fail(c, err, "Could not load the vehicle.")
		return
	}
	switch {
	case d.Top.Kind == ui.DialogDetail:
		page.RenderDialog(c, "vehicles/detail_dialog.html", d, gin.H{"Vehicle": v})
	case d.Top.Kind == ui.DialogEdit && path == myDialogPath:
		renderEdit(c, d, v, formOf(v), nil)
	case d.Top.Kind == ui.DialogDelete && path == myDialogPath:
		page.RenderDialog(c, "vehicles/delete_dialog.html", d, gin.H{"Vehicle": v})
	default:
		page.Fail(c, domain.ErrNotFound, "This dialog no longer exists.")
	}
}

func formOf(v domain.Vehicle) domain.UpdateVehicleInput {
	return domain.UpdateVehicleInput{
		VehiclePlateNumber: v.VehiclePlateNumber,
		VehicleType:        v.VehicleType,
		VehicleColor:       v.VehicleColor,
		VehicleBrand:       v.VehicleBrand,
		VehicleModel:       v.VehicleModel,
		VehicleYear:        v.VehicleYear,
	}
}

func renderCreate(c *gin.Context, d page.Dialog, form domain.VehicleInput, errs map[string]string) {
	page.RenderDialog(c, "vehicles/create_dialog.html", d, gin.H{
		"Form":    form,
		"Errors":  errs,
		"MinYear": domain.MinVehicleYear,
		"MaxYear": domain.MaxVehicleYear(),
	})
}

func renderEdit(c *gin.Context, d page.Dialog, v domain.Vehicle, form domain.UpdateVehicleInput, errs map[string]string) {
	page.RenderDialog(c, "vehicles/edit_dialog.html", d, gin.H{
		"Vehicle": v,
		"Form":    form,
		"Errors":  errs,
		"MinYear": domain.MinVehicleYear,
		"MaxYear": domain.MaxVehicleYear(),
	})
}

// Create registers a vehicle for the caller.
// POST /vehicles
func (h *PageHandler) Create(c *gin.Context) {
	d, _ := page.OpenDialog(c, myDialogPath)

	var in domain.VehicleInput
	if errs, ok := pkg.BindForm(c, &in); !ok {
		renderCreate(c, d, in, errs)
		return
	}
	v, err := h.services(c).CreateVehicle(c.Request.Context(), in)
	if err != nil {
		if errs := page.SubmitFailed(c, err, "Could not register the vehicle."); errs != nil {
			renderCreate(c, d, in, errs)
		}
		return
	}
	page.Done(c, fmt.Sprintf("Vehicle %s registered", v.VehiclePlateNumber), table.RefreshEvent(MyTableID), table.RefreshEvent(TableID))
}

// Update edits one of the caller's vehicles.
// PATCH /vehicles/:id
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	d, _ := page.OpenDialog(c, myDialogPath)
	svc := h.services(c)

	var in domain.UpdateVehicleInput
	errs, valid := pkg.BindForm(c, &in)
	if valid {
		_, err := svc.UpdateVehicle(c.Request.Context(), id, in)
		if err == nil {
			page.Done(c, "Vehicle updated", table.RefreshEvent(MyTableID), table.RefreshEvent(TableID))
			return
		}
		if errs = page.SubmitFailed(c, err, "Could not update the vehicle."); errs == nil {
			return
		}
	}

	v, err := page.Require(svc.GetVehicle(c.Request.Context(), id))
	if err != nil {
		page.Fail(c, err, "Could not load the vehicle.")
		return
	}
	renderEdit(c, d, v, in, errs)
}

// Delete removes one of the caller's vehicles.
// DELETE /vehicles/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	if err := h.services(c).DeleteVehicle(c.Request.Context(), id); err != nil {
		pkg.MutationFailed(c, err, "Could not delete the vehicle.")
		return
	}
	page.Done(c, "Vehicle deleted", table.RefreshEvent(MyTableID), table.RefreshEvent(TableID))
}

// Lookup finds a vehicle by plate number and opens its details.
// GET /vehicles/lookup?plate=...
func (h *PageHandler) Lookup(c *gin.Context) {
	plate := strings.TrimSpace(c.Query("plate"))
	res := h.services(c).GetVehicleByPlate(c.Request.Context(), plate)
	switch {
	case res.IsDisabled():
		pkg.NoSwap(c)
		pkg.SetToast(c, "Enter a plate number to look up.", pkg.ToastInfo)
		c.Status(http.StatusOK)
	case res.IsErr() && domain.IsNotFound(res.Err):
		pkg.NoSwap(c)
		pkg.SetToast(c, fmt.Sprintf("No vehicle with plate %s.", plate), pkg.ToastError)
		c.Status(http.StatusOK)
	case res.IsErr():
		page.Fail(c, res.Err, "Could not look up the vehicle.")
	default:
		d := page.Dialog{Path: myDialogPath, Stack: ui.Dialogs{}.Open(ui.DialogDetail, res.Value.ID)}
		d.Top, _ = d.Stack.Top()
		page.RenderDialog(c, "vehicles/detail_dialog.html", d, gin.H{"Vehicle": res.Value})
	}
}
