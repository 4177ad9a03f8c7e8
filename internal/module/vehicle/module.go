package vehicle

import "github.com/simp-lee/parkdash/internal/module/page"

// VehicleModule implements the app.Module interface for vehicles.
type VehicleModule struct {
	pageHandler *PageHandler
}

// NewModule creates a new VehicleModule.
// Panics if ph is nil.
func NewModule(ph *PageHandler) *VehicleModule {
	if ph == nil {
		panic("vehicle.NewModule: pageHandler must not be nil")
	}
	return &VehicleModule{pageHandler: ph}
}

// RegisterRoutes registers the customer's vehicle pages and the admin list.
func (m *VehicleModule) RegisterRoutes(r page.Routes) {
	r.User.GET("/vehicles", m.pageHandler.Mine)
	r.User.GET("/vehicles/dialog", m.pageHandler.Dialog)
	r.User.GET("/vehicles/lookup", m.pageHandler.Lookup)
	r.User.POST("/vehicles", m.pageHandler.Create)
	r.User.PATCH("/vehicles/:id", m.pageHandler.Update)
	r.User.DELETE("/vehicles/:id", m.pageHandler.Delete)

	r.Admin.GET("/vehicles", m.pageHandler.All)
	r.Admin.GET("/vehicles/dialog", m.pageHandler.AdminDialog)
}
