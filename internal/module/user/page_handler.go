package user

import (
	"context"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/table"
	"github.com/simp-lee/parkdash/internal/ui"
)

// Services is what the user pages read and write through.
type Services interface {
	domain.UserService
	ListUserOrders(ctx context.Context, userID string, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]]
	GetOrder(ctx context.Context, id string) domain.Result[domain.SlotOrder]
}

const (
	AdminPath  = "/admin/users"
	dialogPath = AdminPath + "/dialog"

	TableID = "users"

	// dialogOrder shows one order of the user in the detail dialog.
	dialogOrder = "order"
)

// recentOrders is the read behind the orders shown in a user's details.
var recentOrders = domain.PageRequest{PageIndex: 0, PageSize: 10}

// PageHandler handles the admin user pages.
type PageHandler struct {
	services func(*gin.Context) Services
	tracker  func(*gin.Context) *table.Tracker
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(services func(*gin.Context) Services, tracker func(*gin.Context) *table.Tracker) *PageHandler {
	return &PageHandler{services: services, tracker: tracker}
}

func userTable() *table.Table[domain.User] {
	return &table.Table[domain.User]{
		ID:   TableID,
		Path: AdminPath,
		Columns: []table.Column[domain.User]{
			{Key: "firstName", Header: "Name", Sortable: true, Value: domain.User.FullName},
			{Key: "email", Header: "Email", Sortable: true, Value: func(u domain.User) string { return u.Email }},
			{Key: "role", Header: "Role", HTML: func(u domain.User) template.HTML {
				tone := "neutral"
				if u.IsAdmin() {
					tone = "primary"
				}
				return page.Badge(string(u.Role), tone)
			}},
			{Key: "createdAt", Header: "Joined", Sortable: true, Value: func(u domain.User) string { return page.FormatDate(u.CreatedAt) }},
			{Header: "Actions", HTML: func(u domain.User) template.HTML {
				return page.Buttons(
					page.DialogButton(page.DialogURL(dialogPath, ui.DialogDetail, u.ID), "View", "btn-ghost"),
					page.DialogButton(page.DialogURL(dialogPath, ui.DialogEdit, u.ID), "Edit", "btn-ghost"),
					page.DialogButton(page.DialogURL(dialogPath, ui.DialogDelete, u.ID), "Delete", "btn-danger"),
				)
			}},
		},
		SearchPlaceholder: "Search name or email...",
	}
}

// List renders the user list page.
// GET /admin/users
func (h *PageHandler) List(c *gin.Context) {
	page.ServeTable(c, h.tracker(c), userTable(), h.services(c).ListUsers, "users/list.html", gin.H{
		"Title":     "Users",
		"CreateURL": page.DialogURL(dialogPath, ui.DialogCreate, ""),
	})
}

// Dialog renders the top user dialog. The detail dialog lists the user's
// orders, each of which opens on top of it.
// GET /admin/users/dialog
func (h *PageHandler) Dialog(c *gin.Context) {
	d, ok := page.OpenDialog(c, dialogPath)
	if !ok {
		page.CloseDialog(c)
		return
	}
	svc := h.services(c)
	ctx := c.Request.Context()

	switch d.Top.Kind {
	case ui.DialogCreate:
		renderCreate(c, d, domain.CreateUserInput{}, nil)
		return
	case dialogOrder:
		o, err := page.Require(svc.GetOrder(ctx, d.Top.Payload))
		if err != nil {
			page.Fail(c, err, "Could not load the order.")
			return
		}
		page.RenderDialog(c, "orders/detail_dialog.html", d, gin.H{"Order": o})
		return
	}

	u, err := page.Require(svc.GetUser(ctx, d.Top.Payload))
	if err != nil {
		page.Fail(c, err, "Could not load the user.")
		return
	}
	switch d.Top.Kind {
	case ui.DialogDetail:
		data := gin.H{"User": u, "Orders": nil, "OrderCount": 0, "OrdersError": ""}
		orders, err := svc.ListUserOrders(ctx, u.ID, recentOrders).Get()
		switch {
		case err == nil:
			data["Orders"] = orders.Items
			data["OrderCount"] = orders.TotalCount
		case pkg.ReadFailed(c, err):
			return
		default:
			data["OrdersError"] = domain.UserMessage(err, "Could not load the user's orders.")
		}
		page.RenderDialog(c, "users/detail_dialog.html", d, data)
	case ui.DialogEdit:
		renderEdit(c, d, u, domain.UpdateUserInput{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}, nil)
	case ui.DialogDelete:
		page.RenderDialog(c, "users/delete_dialog.html", d, gin.H{"User": u})
	default:
		page.Fail(c, domain.ErrNotFound, "This dialog no longer exists.")
	}
}

func renderCreate(c *gin.Context, d page.Dialog, form domain.CreateUserInput, errs map[string]string) {
	// Never echo a password back into the page.
	form.Password = ""
	page.RenderDialog(c, "users/create_dialog.html", d, gin.H{"Form": form, "Errors": errs})
}

func renderEdit(c *gin.Context, d page.Dialog, u domain.User, form domain.UpdateUserInput, errs map[string]string) {
	page.RenderDialog(c, "users/edit_dialog.html", d, gin.H{"User": u, "Form": form, "Errors": errs})
}

// Create creates an account.
// POST /admin/users
func (h *PageHandler) Create(c *gin.Context) {
	d, _ := page.OpenDialog(c, dialogPath)

	var in domain.CreateUserInput
	if errs, ok := pkg.BindForm(c, &in); !ok {
		renderCreate(c, d, in, errs)
		return
	}
	u, err := h.services(c).CreateUser(c.Request.Context(), in)
	if err != nil {
		if errs := page.SubmitFailed(c, err, "Could not create the user."); errs != nil {
			renderCreate(c, d, in, errs)
		}
		return
	}
	page.Done(c, fmt.Sprintf("User %s created", u.Email), table.RefreshEvent(TableID))
}

// Update edits an account.
// PUT /admin/users/:id
func (h *PageHandler) Update(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	d, _ := page.OpenDialog(c, dialogPath)
	svc := h.services(c)

	var in domain.UpdateUserInput
	errs, valid := pkg.BindForm(c, &in)
	if valid {
		_, err := svc.UpdateUser(c.Request.Context(), id, in)
		if err == nil {
			page.Done(c, "User updated", table.RefreshEvent(TableID))
			return
		}
		if errs = page.SubmitFailed(c, err, "Could not update the user."); errs == nil {
			return
		}
	}

	u, err := page.Require(svc.GetUser(c.Request.Context(), id))
	if err != nil {
		page.Fail(c, err, "Could not load the user.")
		return
	}
	renderEdit(c, d, u, in, errs)
}

// Delete removes an account.
// DELETE /admin/users/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, ok := page.ID(c)
	if !ok {
		return
	}
	if err := h.services(c).DeleteUser(c.Request.Context(), id); err != nil {
		pkg.MutationFailed(c, err, "Could not delete the user.")
		return
	}
	page.Done(c, "User deleted", table.RefreshEvent(TableID))
}
