package slot

import "github.com/simp-lee/parkdash/internal/module/page"

// SlotModule implements the app.Module interface for parking slots.
type SlotModule struct {
	pageHandler *PageHandler
}

// NewModule creates a new SlotModule.
// Panics if ph is nil.
func NewModule(ph *PageHandler) *SlotModule {
	if ph == nil {
		panic("slot.NewModule: pageHandler must not be nil")
	}
	return &SlotModule{pageHandler: ph}
}

// RegisterRoutes registers the admin slot pages and the customer booking pages.
func (m *SlotModule) RegisterRoutes(r page.Routes) {
	r.Admin.GET("/slots", m.pageHandler.List)
	r.Admin.GET("/slots/dialog", m.pageHandler.Dialog)
	r.Admin.POST("/slots", m.pageHandler.Create)
	r.Admin.POST("/slots/bulk", m.pageHandler.CreateMany)
	r.Admin.PATCH("/slots/:id", m.pageHandler.Update)
	r.Admin.DELETE("/slots/:id", m.pageHandler.Delete)

	r.User.GET("/slots", m.pageHandler.Available)
	r.User.GET("/slots/dialog", m.pageHandler.BookDialog)
	r.User.POST("/slots/:id/book", m.pageHandler.Book)
}
