package domain

import "context"

// ParkingService reads parking lots.
type ParkingService interface {
	ListParkings(ctx context.Context, req PageRequest) Result[Envelope[Parking]]
	GetParking(ctx context.Context, id string) Result[Parking]
}

// SlotService reads and mutates slots.
type SlotService interface {
	ListSlots(ctx context.Context, req PageRequest) Result[Envelope[Slot]]
	GetSlot(ctx context.Context, id string) Result[Slot]
	SlotStats(ctx context.Context) Result[SlotStats]
	CreateSlot(ctx context.Context, in CreateSlotInput) (*Slot, error)
	CreateSlots(ctx context.Context, in BulkCreateSlotsInput) ([]Slot, error)
	UpdateSlot(ctx context.Context, id string, in UpdateSlotInput) (*Slot, error)
	DeleteSlot(ctx context.Context, id string) error
}

// VehicleService reads and mutates vehicles.
type VehicleService interface {
	ListVehicles(ctx context.Context, req PageRequest) Result[Envelope[Vehicle]]
	ListMyVehicles(ctx context.Context, req PageRequest) Result[Envelope[Vehicle]]
	GetVehicle(ctx context.Context, id string) Result[Vehicle]
	GetVehicleByPlate(ctx context.Context, plate string) Result[Vehicle]
	CreateVehicle(ctx context.Context, in VehicleInput) (*Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, in UpdateVehicleInput) (*Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
}

// UserService reads and mutates user accounts.
type UserService interface {
	ListUsers(ctx context.Context, req PageRequest) Result[Envelope[User]]
	GetUser(ctx context.Context, id string) Result[User]
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// OrderService reads and mutates slot orders.
type OrderService interface {
	ListOrders(ctx context.Context, req PageRequest) Result[Envelope[SlotOrder]]
	ListUserOrders(ctx context.Context, userID string, req PageRequest) Result[Envelope[SlotOrder]]
	GetOrder(ctx context.Context, id string) Result[SlotOrder]
	CreateOrder(ctx context.Context, in CreateOrderInput) (*SlotOrder, error)
	UpdateOrderStatus(ctx context.Context, id string, in UpdateOrderStatusInput) (*SlotOrder, error)
	DeleteOrder(ctx context.Context, id string) error
}

// AuthService talks to the unauthenticated auth endpoints. Nothing it
// returns is cached.
type AuthService interface {
	Login(ctx context.Context, in Credentials) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) error
	SendResetPasswordEmail(ctx context.Context, in EmailInput) error
	ResetPassword(ctx context.Context, token string, in ResetPasswordInput) error
	VerifyEmail(ctx context.Context, token string, in EmailInput) error
	SendVerificationEmail(ctx context.Context, in EmailInput) error
}
