package app

import "github.com/simp-lee/parkdash/internal/module/page"

// Module defines the contract for a self-registering page module.
// Each module places its routes in the public, user or admin group.
type Module interface {
	RegisterRoutes(r page.Routes)
}
