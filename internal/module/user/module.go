package user

import "github.com/simp-lee/parkdash/internal/module/page"

// UserModule implements the app.Module interface for user accounts.
type UserModule struct {
	pageHandler *PageHandler
}

// NewModule creates a new UserModule.
// Panics if ph is nil.
func NewModule(ph *PageHandler) *UserModule {
	if ph == nil {
		panic("user.NewModule: pageHandler must not be nil")
	}
	return &UserModule{pageHandler: ph}
}

// RegisterRoutes registers the admin user pages.
func (m *UserModule) RegisterRoutes(r page.Routes) {
	r.Admin.GET("/users", m.pageHandler.List)
	r.Admin.GET("/users/dialog", m.pageHandler.Dialog)
	r.Admin.POST("/users", m.pageHandler.Create)
	r.Admin.PUT("/users/:id", m.pageHandler.Update)
	r.Admin.DELETE("/users/:id", m.pageHandler.Delete)
}
