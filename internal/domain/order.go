package domain

// OrderStatus is the lifecycle state of a slot order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCompleted OrderStatus = "COMPLETED"
)

// OrderStatuses lists the known statuses. Which transitions between them are
// legal is decided by the backend.
var OrderStatuses = []OrderStatus{OrderPending, OrderApproved, OrderRejected, OrderCompleted}

// SlotOrder is a reservation linking a customer, a vehicle and a slot.
type SlotOrder struct {
	ID                     string      `json:"id"`
	ParkingSlotID          string      `json:"parkingSlotId"`
	VehicleID              string      `json:"vehicleId"`
	ParkingSlotCustomerID  string      `json:"parkingSlotCustomerId"`
	ParkingSlotVehicleID   string      `json:"parkingSlotVehicleId"`
	PricePerHour           float64     `json:"pricePerHour"`
	Hours                  float64     `json:"hours"`
	ParkingSlotOrderStatus OrderStatus `json:"parkingSlotOrderStatus"`
	ParkingSlot            *Slot       `json:"parkingSlot,omitempty"`
	ParkingSlotVehicle     *Vehicle    `json:"parkingSlotVehicle,omitempty"`
	Timestamps
}

// Total returns the price of the order.
func (o SlotOrder) Total() float64 {
	return o.PricePerHour * o.Hours
}

// CreateOrderInput books a slot for one of the caller's vehicles.
type CreateOrderInput struct {
	SlotID             string `form:"slotId" json:"slotId" binding:"required"`
	VehiclePlateNumber string `form:"vehiclePlateNumber" json:"vehiclePlateNumber" binding:"required,min=2"`
}

// UpdateOrderStatusInput requests a status transition.
type UpdateOrderStatusInput struct {
	Status OrderStatus `form:"status" json:"status" binding:"required,orderstatus"`
}
