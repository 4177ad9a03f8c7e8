package domain

// Parking is a parking lot.
type Parking struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Timestamps
}

// SlotSize is the size category of a slot.
type SlotSize string

const (
	SlotSmall  SlotSize = "SMALL"
	SlotMedium SlotSize = "MEDIUM"
	SlotLarge  SlotSize = "LARGE"
)

// SlotSizes lists the known sizes in display order.
var SlotSizes = []SlotSize{SlotSmall, SlotMedium, SlotLarge}

// SlotStatus is the occupancy state of a slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "AVAILABLE"
	SlotOccupied    SlotStatus = "OCCUPIED"
	SlotMaintenance SlotStatus = "MAINTENANCE"
)

// SlotStatuses lists the known statuses in display order.
var SlotStatuses = []SlotStatus{SlotAvailable, SlotOccupied, SlotMaintenance}

// Slot is a single parking space.
type Slot struct {
	ID                string     `json:"id"`
	ParkingID         string     `json:"parkingId,omitempty"`
	ParkingSlotNumber string     `json:"parkingSlotNumber"`
	ParkingSlotSize   SlotSize   `json:"parkingSlotSize"`
	ParkingSlotStatus SlotStatus `json:"parkingSlotStatus"`
	Parking           *SlotLot   `json:"parking,omitempty"`
	Timestamps
}

// SlotLot is the lot summary the backend embeds in slots of an order.
type SlotLot struct {
	ID           string  `json:"id"`
	MaxSlots     int     `json:"maxSlots"`
	SlotCategory string  `json:"slotCategory"`
	PricePerHour float64 `json:"pricePerHour"`
}

// SlotStats counts slots by status.
type SlotStats struct {
	Total       int
	Available   int
	Occupied    int
	Maintenance int
}

// CreateSlotInput creates one slot in a lot.
type CreateSlotInput struct {
	SlotSize  SlotSize `form:"slotSize" json:"slotSize" binding:"required,slotsize"`
	ParkingID string   `form:"parkingId" json:"parkingId" binding:"required"`
}

// BulkCreateSlotsInput creates NumberOfSlots slots of one size.
type BulkCreateSlotsInput struct {
	NumberOfSlots int      `form:"numberOfSlots" json:"numberOfSlots" binding:"required,min=1,max=100"`
	SlotSize      SlotSize `form:"slotSize" json:"slotSize" binding:"required,slotsize"`
}

// UpdateSlotInput is a partial update of size and status.
type UpdateSlotInput struct {
	SlotSize   SlotSize   `form:"slotSize" json:"slotSize,omitempty" binding:"omitempty,slotsize"`
	SlotStatus SlotStatus `form:"slotStatus" json:"slotStatus,omitempty" binding:"omitempty,slotstatus"`
}
