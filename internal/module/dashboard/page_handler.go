// Package dashboard renders the landing pages of administrators and users.
// Each card reads on its own and shows its own error, so one failing
// endpoint never blanks the page.
package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
)

// Services is what the dashboards read.
type Services interface {
	SlotStats(ctx context.Context) domain.Result[domain.SlotStats]
	ListUsers(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.User]]
	ListOrders(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]]
	ListMyVehicles(ctx context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]]
	ListUserOrders(ctx context.Context, userID string, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]]
}

var (
	// countOnly reads a single row; only the envelope total is used.
	countOnly    = domain.PageRequest{PageIndex: 0, PageSize: 1}
	recentOrders = domain.PageRequest{PageIndex: 0, PageSize: 5, SortColumn: "createdAt", SortDir: domain.SortDesc}
)

// PageHandler serves the two dashboards.
type PageHandler struct {
	services func(*gin.Context) Services
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(services func(*gin.Context) Services) *PageHandler {
	return &PageHandler{services: services}
}

// card is the outcome of one dashboard read.
type card struct {
	key      string
	value    any
	err      error
	fallback string
}

func total[T any](r domain.Result[domain.Envelope[T]]) (int, error) {
	env, err := r.Get()
	return env.TotalCount, err
}

// gather runs the reads concurrently and lays their outcomes out as
// template data: the value under key and the message under key+"Error".
// It returns false when a read found the session expired.
func gather(c *gin.Context, reads ...func() card) (gin.H, bool) {
	cards := make([]card, len(reads))
	var g errgroup.Group
	for i, read := range reads {
		g.Go(func() error {
			cards[i] = read()
			return nil
		})
	}
	_ = g.Wait()

	data := gin.H{}
	for _, cd := range cards {
		data[cd.key] = cd.value
		data[cd.key+"Error"] = ""
		if cd.err == nil {
			continue
		}
		if pkg.ReadFailed(c, cd.err) {
			return nil, false
		}
		data[cd.key+"Error"] = domain.UserMessage(cd.err, cd.fallback)
	}
	return data, true
}

// Admin renders the administrator overview.
// GET /admin
func (h *PageHandler) Admin(c *gin.Context) {
	svc := h.services(c)
	ctx := c.Request.Context()

	data, ok := gather(c,
		func() card {
			st, err := svc.SlotStats(ctx).Get()
			return card{key: "Slots", value: st, err: err, fallback: "Could not load slot statistics."}
		},
		func() card {
			n, err := total(svc.ListUsers(ctx, countOnly))
			return card{key: "Users", value: n, err: err, fallback: "Could not count users."}
		},
		func() card {
			n, err := total(svc.ListOrders(ctx, countOnly))
			return card{key: "Orders", value: n, err: err, fallback: "Could not count orders."}
		},
	)
	if !ok {
		return
	}
	data["Title"] = "Dashboard"
	page.Render(c, http.StatusOK, "dashboard/admin.html", data)
}

// User renders the signed-in user's overview.
// GET /dashboard
func (h *PageHandler) User(c *gin.Context) {
	svc := h.services(c)
	ctx := c.Request.Context()
	userID := session.Current(c).UserID()

	data, ok := gather(c,
		func() card {
			n, err := total(svc.ListMyVehicles(ctx, countOnly))
			return card{key: "Vehicles", value: n, err: err, fallback: "Could not count your vehicles."}
		},
		func() card {
			env, err := svc.ListUserOrders(ctx, userID, recentOrders).Get()
			return card{key: "RecentOrders", value: env.Items, err: err, fallback: "Could not load your recent orders."}
		},
	)
	if !ok {
		return
	}
	data["Title"] = "Dashboard"
	page.Render(c, http.StatusOK, "dashboard/user.html", data)
}
