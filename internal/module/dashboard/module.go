package dashboard

import "github.com/simp-lee/parkdash/internal/module/page"

// DashboardModule implements the app.Module interface for the landing pages.
type DashboardModule struct {
	pageHandler *PageHandler
}

// NewModule creates a new DashboardModule.
// Panics if ph is nil.
func NewModule(ph *PageHandler) *DashboardModule {
	if ph == nil {
		panic("dashboard.NewModule: pageHandler must not be nil")
	}
	return &DashboardModule{pageHandler: ph}
}

// RegisterRoutes registers both dashboards.
func (m *DashboardModule) RegisterRoutes(r page.Routes) {
	r.Admin.GET("", m.pageHandler.Admin)
	r.User.GET("/dashboard", m.pageHandler.User)
}
