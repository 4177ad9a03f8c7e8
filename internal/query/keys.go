package query

import (
	"net/url"
	"strconv"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Cache key roots. Lists live under the plural root, single records under
// the singular one, so a list invalidation never drops detail entries.
const (
	rootParkings     = "parkings"
	rootParking      = "parking"
	rootSlots        = "slots"
	rootSlot         = "slot"
	rootVehicles     = "vehicles"
	rootUserVehicles = "userVehicles"
	rootVehicle      = "vehicle"
	rootUsers        = "users"
	rootUser         = "user"
	rootOrders       = "slotOrders"
	rootUserOrders   = "userSlotOrders"
	rootOrder        = "slotOrder"
	rootDashboard    = "dashboard"
)

var (
	createSlot = Mutation{
		Name:     "create slot",
		Prefixes: []Key{K(rootSlots), K(rootDashboard)},
	}
	createSlots = Mutation{
		Name:     "create slots",
		Prefixes: []Key{K(rootSlots), K(rootDashboard)},
	}
	updateSlot = Mutation{
		Name:     "update slot",
		Prefixes: []Key{K(rootSlots), K(rootDashboard)},
		ByID:     []Key{K(rootSlot)},
	}
	deleteSlot = Mutation{
		Name:     "delete slot",
		Prefixes: []Key{K(rootSlots), K(rootDashboard)},
		ByID:     []Key{K(rootSlot)},
	}

	createVehicle = Mutation{
		Name:     "create vehicle",
		Prefixes: []Key{K(rootVehicles), K(rootUserVehicles)},
	}
	updateVehicle = Mutation{
		Name:     "update vehicle",
		Prefixes: []Key{K(rootVehicles), K(rootUserVehicles), K(rootVehicle, "plate")},
		ByID:     []Key{K(rootVehicle)},
	}
	deleteVehicle = Mutation{
		Name:     "delete vehicle",
		Prefixes: []Key{K(rootVehicles), K(rootUserVehicles), K(rootVehicle, "plate")},
		ByID:     []Key{K(rootVehicle)},
	}

	createUser = Mutation{
		Name:     "create user",
		Prefixes: []Key{K(rootUsers), K(rootDashboard)},
	}
	updateUser = Mutation{
		Name:     "update user",
		Prefixes: []Key{K(rootUsers)},
		ByID:     []Key{K(rootUser)},
	}
	deleteUser = Mutation{
		Name:     "delete user",
		Prefixes: []Key{K(rootUsers), K(rootDashboard)},
		ByID:     []Key{K(rootUser)},
	}

	// Orders change the booked slot's status but only createOrder knows
	// which slot, so every order write drops all slot details.
	createOrder = Mutation{
		Name:     "create order",
		Prefixes: []Key{K(rootOrders), K(rootUserOrders), K(rootSlots), K(rootSlot), K(rootDashboard)},
	}
	updateOrderStatus = Mutation{
		Name:     "update order status",
		Prefixes: []Key{K(rootOrders), K(rootUserOrders), K(rootSlots), K(rootSlot), K(rootDashboard)},
		ByID:     []Key{K(rootOrder)},
	}
	deleteOrder = Mutation{
		Name:     "delete order",
		Prefixes: []Key{K(rootOrders), K(rootUserOrders), K(rootSlots), K(rootSlot), K(rootDashboard)},
		ByID:     []Key{K(rootOrder)},
	}
)

// pageSegment serializes a list request into one stable key segment.
// url.Values.Encode sorts by name, so equal requests yield equal segments.
func pageSegment(req domain.PageRequest) string {
	v := url.Values{}
	v.Set("i", strconv.Itoa(req.PageIndex))
	v.Set("n", strconv.Itoa(req.PageSize))
	if req.Search != "" {
		v.Set("q", req.Search)
	}
	if req.SortColumn != "" {
		v.Set("sort", req.SortColumn)
		v.Set("dir", string(req.SortDir))
	}
	for name, val := range req.Filters {
		if val != "" {
			v.Set("f."+name, val)
		}
	}
	return v.Encode()
}
