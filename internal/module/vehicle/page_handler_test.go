package vehicle

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/pagetest"
)

const templates = `{{define "vehicles/mine.html"}}mine|{{template "fragments/table.html" .}}{{end}}` +
	`{{define "vehicles/admin.html"}}all|{{template "fragments/table.html" .}}{{end}}` +
	`{{define "vehicles/create_dialog.html"}}create:{{.Form.VehiclePlateNumber}}|{{range $k, $v := .Errors}}{{$k}}={{$v}};{{end}}{{end}}` +
	`{{define "vehicles/edit_dialog.html"}}edit:{{.Vehicle.ID}}:{{.Form.VehicleColor}}|{{range $k, $v := .Errors}}{{$k}}={{$v}};{{end}}{{end}}` +
	`{{define "vehicles/delete_dialog.html"}}delete:{{.Vehicle.VehiclePlateNumber}}{{end}}` +
	`{{define "vehicles/detail_dialog.html"}}detail:{{.Vehicle.ID}}:{{.Dialog.Top}}{{end}}`

func setup(t *testing.T, user domain.User) (*gin.Engine, *pagetest.Services) {
	t.Helper()
	svc := pagetest.New(pagetest.Customer.ID)
	svc.Vehicles = []domain.Vehicle{
		{ID: "v1", VehiclePlateNumber: "AB-123", VehicleBrand: "Toyota", VehicleColor: "Red", VehicleYear: 2020, UserID: pagetest.Customer.ID},
		{ID: "v2", VehiclePlateNumber: "CD-456", VehicleBrand: "Honda", VehicleColor: "Blue", VehicleYear: 2018, UserID: pagetest.Customer.ID},
		{ID: "v3", VehiclePlateNumber: "ZZ-999", VehicleBrand: "Ford", VehicleColor: "Black", VehicleYear: 2020, UserID: "someone-else"},
	}
	env := pagetest.NewEnv(svc)
	r, routes := pagetest.NewRouter(templates, &user)
	h := NewPageHandler(func(*gin.Context) domain.VehicleService { return env.Services }, env.TrackerFor)
	NewModule(h).RegisterRoutes(routes)
	return r, svc
}

func validForm() url.Values {
	return url.Values{
		"vehiclePlateNumber": {"EF-777"},
		"vehicleType":        {"Car"},
		"vehicleColor":       {"Green"},
		"vehicleBrand":       {"Mazda"},
		"vehicleModel":       {"3"},
		"vehicleYear":        {"2021"},
	}
}

func TestMine_OnlyOwnVehicles(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)

	w := pagetest.Do(r, http.MethodGet, "/vehicles", nil)
	if body := w.Body.String(); body != "mine|table:my-vehicles:rows:2" {
		t.Errorf("body = %q", body)
	}

	w = pagetest.Do(r, http.MethodGet, "/vehicles?f.year=2020&q=toy", nil, MyTableID)
	if body := w.Body.String(); body != "table:my-vehicles:rows:1" {
		t.Errorf("filtered body = %q", body)
	}
	if req := svc.LastRequest(); req.Filter("year") != "2020" || req.Search != "toy" {
		t.Errorf("request = %+v", req)
	}
}

func TestMine_EmptyIsNotLoading(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)
	svc.Vehicles = nil

	w := pagetest.Do(r, http.MethodGet, "/vehicles", nil, MyTableID)
	if body := w.Body.String(); body != "table:my-vehicles:empty:0" {
		t.Errorf("body = %q", body)
	}
}

func TestAll(t *testing.T) {
	r, _ := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodGet, "/admin/vehicles?size=20", nil)
	if body := w.Body.String(); body != "all|table:vehicles:rows:3" {
		t.Errorf("body = %q", body)
	}
	w = pagetest.Do(r, http.MethodGet, "/admin/vehicles/dialog?dialog=detail:v3", nil, "dialog-root")
	if body := w.Body.String(); body != "detail:v3:detail:v3" {
		t.Errorf("detail = %q", body)
	}
	// Administrators only view vehicles.
	w = pagetest.Do(r, http.MethodGet, "/admin/vehicles/dialog?dialog=edit:v3", nil, "dialog-root")
	if _, kind := pagetest.Toast(w); kind != "error" {
		t.Errorf("admin edit dialog should be refused, got %q", w.Body.String())
	}
}

func TestDialogs(t *testing.T) {
	r, _ := setup(t, pagetest.Customer)

	tests := []struct {
		target string
		want   string
	}{
		{"/vehicles/dialog?dialog=create", "create:|"},
		{"/vehicles/dialog?dialog=edit:v2", "edit:v2:Blue|"},
		{"/vehicles/dialog?dialog=delete:v1", "delete:AB-123"},
		{"/vehicles/dialog", ""},
	}
	for _, tt := range tests {
		w := pagetest.Do(r, http.MethodGet, tt.target, nil, "dialog-root")
		if w.Body.String() != tt.want {
			t.Errorf("%s = %q; want %q", tt.target, w.Body.String(), tt.want)
		}
	}
}

func TestCreate(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)

	w := pagetest.Do(r, http.MethodPost, "/vehicles", validForm(), "dialog-root")
	if msg, _ := pagetest.Toast(w); msg != "Vehicle EF-777 registered" {
		t.Errorf("toast = %q", msg)
	}
	// Both the general and the "mine" lists are affected.
	if !pagetest.Refreshed(w, MyTableID) || !pagetest.Refreshed(w, TableID) {
		t.Errorf("trigger = %v", pagetest.Trigger(w))
	}
	if len(svc.Vehicles) != 4 {
		t.Errorf("vehicles = %d", len(svc.Vehicles))
	}
}

func TestCreate_Validation(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)

	form := validForm()
	form.Set("vehiclePlateNumber", "E")
	form.Set("vehicleYear", strconv.Itoa(domain.MaxVehicleYear()+1))
	w := pagetest.Do(r, http.MethodPost, "/vehicles", form, "dialog-root")

	body := w.Body.String()
	if !strings.HasPrefix(body, "create:E|") || !strings.Contains(body, "vehiclePlateNumber=must be at least 2 characters") || !strings.Contains(body, "vehicleYear=") {
		t.Errorf("body = %q", body)
	}
	if svc.Called("CreateVehicle") {
		t.Error("invalid vehicle must not be sent")
	}
}

func TestCreate_ServerFieldErrors(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)
	rejected := domain.NewServerRejected(http.StatusConflict, "Plate already registered")
	rejected.Fields = map[string]string{"vehiclePlateNumber": "already taken"}
	svc.MutateErr = rejected

	w := pagetest.Do(r, http.MethodPost, "/vehicles", validForm(), "dialog-root")
	body := w.Body.String()
	if !strings.Contains(body, "_form=Plate already registered;") || !strings.Contains(body, "vehiclePlateNumber=already taken;") {
		t.Errorf("body = %q", body)
	}
	if pagetest.Refreshed(w, MyTableID) {
		t.Error("failed mutation must not refresh")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	r, svc := setup(t, pagetest.Customer)

	w := pagetest.Do(r, http.MethodPatch, "/vehicles/v1", url.Values{"vehicleColor": {"White"}}, "dialog-root")
	if msg, _ := pagetest.Toast(w); msg != "Vehicle updated" || svc.Vehicles[0].VehicleColor != "White" {
		t.Errorf("toast = %q, vehicle = %+v", msg, svc.Vehicles[0])
	}

	w = pagetest.Do(r, http.MethodPatch, "/vehicles/v1", url.Values{"vehicleColor": {"W"}}, "dialog-root")
	if body := w.Body.String(); !strings.HasPrefix(body, "edit:v1:W|vehicleColor=") {
		t.Errorf("invalid update = %q", body)
	}

	w = pagetest.Do(r, http.MethodDelete, "/vehicles/v2", nil, "dialog-root")
	if msg, _ := pagetest.Toast(w); msg != "Vehicle deleted" || len(svc.Vehicles) != 2 {
		t.Errorf("toast = %q", msg)
	}

	svc.MutateErr = domain.NewNetworkFailure(nil)
	w = pagetest.Do(r, http.MethodDelete, "/vehicles/v1", nil, "dialog-root")
	if msg, kind := pagetest.Toast(w); kind != "error" || msg != "Could not delete the vehicle." {
		t.Errorf("network failure toast = %q %q", msg, kind)
	}
}

func TestLookup(t *testing.T) {
	r, _ := setup(t, pagetest.Customer)

	w := pagetest.Do(r, http.MethodGet, "/vehicles/lookup?plate=+CD-456+", nil, "dialog-root")
	if body := w.Body.String(); body != "detail:v2:detail:v2" {
		t.Errorf("found = %q", body)
	}

	w = pagetest.Do(r, http.MethodGet, "/vehicles/lookup?plate=NOPE", nil, "dialog-root")
	if msg, kind := pagetest.Toast(w); kind != "error" || msg != "No vehicle with plate NOPE." {
		t.Errorf("missing = %q %q", msg, kind)
	}

	w = pagetest.Do(r, http.MethodGet, "/vehicles/lookup", nil, "dialog-root")
	if _, kind := pagetest.Toast(w); kind != "info" || w.Header().Get("HX-Reswap") != "none" {
		t.Errorf("empty plate: kind = %q", kind)
	}
}
