package order

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/pagetest"
	"github.com/simp-lee/parkdash/internal/module/slot"
)

const templates = `{{define "orders/admin.html"}}admin|{{template "fragments/table.html" .}}{{end}}` +
	`{{define "orders/mine.html"}}mine|{{template "fragments/table.html" .}}{{end}}` +
	`{{define "orders/manage_dialog.html"}}manage:{{.Order.ID}}:{{range .Transitions}}{{.}},{{end}}{{end}}` +
	`{{define "orders/delete_dialog.html"}}delete:{{.Order.ID}}{{end}}` +
	`{{define "orders/detail_dialog.html"}}detail:{{.Order.ID}}:{{.Order.ParkingSlotOrderStatus}}{{end}}`

func setup(t *testing.T, user domain.User) (*gin.Engine, *pagetest.Services) {
	t.Helper()
	svc := pagetest.New(pagetest.Customer.ID)
	svc.Orders = []domain.SlotOrder{
		{ID: "o1", ParkingSlotID: "s1", ParkingSlotCustomerID: pagetest.Customer.ID, ParkingSlotOrderStatus: domain.OrderPending, PricePerHour: 2.5, Hours: 4},
		{ID: "o2", ParkingSlotID: "s2", ParkingSlotCustomerID: "someone-else", ParkingSlotOrderStatus: domain.OrderApproved},
		{ID: "o3", ParkingSlotID: "s3", ParkingSlotCustomerID: pagetest.Customer.ID, ParkingSlotOrderStatus: domain.OrderCompleted},
	}
	env := pagetest.NewEnv(svc)
	r, routes := pagetest.NewRouter(templates, &user)
	h := NewPageHandler(func(*gin.Context) domain.OrderService { return env.Services }, env.TrackerFor)
	NewModule(h).RegisterRoutes(routes)
	return r, svc
}

func TestList(t *testing.T) {
	r, _ := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodGet, "/admin/orders", nil)
	if body := w.Body.String(); body != "admin|table:orders:rows:3" {
		t.Errorf("body = %q", body)
	}
}

func TestMine_ReadsByUser(t *testing.T) {
	r, _ := setup(t, pagetest.Customer)

	w := pagetest.Do(r, http.MethodGet, "/orders", nil, MyTableID)
	if body := w.Body.String(); body != "table:my-orders:rows:2" {
		t.Errorf("body = %q", body)
	}

	w = pagetest.Do(r, http.MethodGet, "/orders/dialog?dialog=detail:o3", nil, "dialog-root")
	if body := w.Body.String(); body != "detail:o3:COMPLETED" {
		t.Errorf("detail = %q", body)
	}
}

func TestDialog(t *testing.T) {
	r, _ := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodGet, "/admin/orders/dialog?dialog=detail:o1", nil, "dialog-root")
	if body := w.Body.String(); body != "manage:o1:APPROVED,REJECTED,COMPLETED," {
		t.Errorf("manage = %q", body)
	}
	w = pagetest.Do(r, http.MethodGet, "/admin/orders/dialog?dialog=detail:o2&dialog=delete:o2", nil, "dialog-root")
	if body := w.Body.String(); body != "delete:o2" {
		t.Errorf("delete = %q", body)
	}
}

func TestUpdateStatus(t *testing.T) {
	r, svc := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodPatch, "/admin/orders/o1", url.Values{"status": {"APPROVED"}}, "dialog-root")
	if msg, _ := pagetest.Toast(w); msg != "Order approved" {
		t.Errorf("toast = %q", msg)
	}
	if svc.Orders[0].ParkingSlotOrderStatus != domain.OrderApproved {
		t.Errorf("status = %s", svc.Orders[0].ParkingSlotOrderStatus)
	}
	for _, id := range []string{TableID, MyTableID, slot.TableID, slot.AvailableTableID} {
		if !pagetest.Refreshed(w, id) {
			t.Errorf("table %s not refreshed", id)
		}
	}
}

func TestUpdateStatus_InvalidStatusNeverSent(t *testing.T) {
	r, svc := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodPatch, "/admin/orders/o1", url.Values{"status": {"CANCELLED"}}, "dialog-root")
	if _, kind := pagetest.Toast(w); kind != "error" || len(svc.Calls) != 0 {
		t.Errorf("kind = %q, calls = %v", kind, svc.Calls)
	}
}

func TestUpdateStatus_BackendRejectionVerbatim(t *testing.T) {
	r, svc := setup(t, pagetest.Admin)
	svc.MutateErr = domain.NewServerRejected(http.StatusUnprocessableEntity, "Completed orders cannot be rejected")

	w := pagetest.Do(r, http.MethodPatch, "/admin/orders/o3", url.Values{"status": {"REJECTED"}}, "dialog-root")
	if msg, kind := pagetest.Toast(w); kind != "error" || msg != "Completed orders cannot be rejected" {
		t.Errorf("toast = %q %q", msg, kind)
	}
	if pagetest.Refreshed(w, TableID) {
		t.Error("rejected transition must not refresh tables")
	}
}

func TestDelete(t *testing.T) {
	r, svc := setup(t, pagetest.Admin)

	w := pagetest.Do(r, http.MethodDelete, "/admin/orders/o2", nil, "dialog-root")
	if msg, _ := pagetest.Toast(w); msg != "Order deleted" || len(svc.Orders) != 2 {
		t.Errorf("toast = %q, orders = %d", msg, len(svc.Orders))
	}
	w = pagetest.Do(r, http.MethodDelete, "/admin/orders/bad.id", nil, "dialog-root")
	if _, kind := pagetest.Toast(w); kind != "error" {
		t.Errorf("malformed id kind = %q", kind)
	}
}

func TestTransitions(t *testing.T) {
	got := transitions(domain.OrderApproved)
	if len(got) != 2 || got[0] != domain.OrderRejected || got[1] != domain.OrderCompleted {
		t.Errorf("transitions(APPROVED) = %v", got)
	}
}
