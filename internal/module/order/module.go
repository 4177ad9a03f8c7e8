package order

import "github.com/simp-lee/parkdash/internal/module/page"

// OrderModule implements the app.Module interface for slot orders.
type OrderModule struct {
	pageHandler *PageHandler
}

// NewModule creates a new OrderModule.
// Panics if ph is nil.
func NewModule(ph *PageHandler) *OrderModule {
	if ph == nil {
		panic("order.NewModule: pageHandler must not be nil")
	}
	return &OrderModule{pageHandler: ph}
}

// RegisterRoutes registers the admin order pages and the customer's history.
func (m *OrderModule) RegisterRoutes(r page.Routes) {
	r.Admin.GET("/orders", m.pageHandler.List)
	r.Admin.GET("/orders/dialog", m.pageHandler.Dialog)
	r.Admin.PATCH("/orders/:id", m.pageHandler.UpdateStatus)
	r.Admin.DELETE("/orders/:id", m.pageHandler.Delete)

	r.User.GET("/orders", m.pageHandler.Mine)
	r.User.GET("/orders/dialog", m.pageHandler.MyDialog)
}
