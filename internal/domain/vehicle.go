package domain

// Vehicle is a registered vehicle owned by a user.
type Vehicle struct {
	ID                 string `json:"id"`
	VehiclePlateNumber string `json:"vehiclePlateNumber"`
	VehicleType        string `json:"vehicleType"`
	VehicleColor       string `json:"vehicleColor"`
	VehicleBrand       string `json:"vehicleBrand"`
	VehicleModel       string `json:"vehicleModel"`
	VehicleYear        int    `json:"vehicleYear"`
	UserID             string `json:"userId,omitempty"`
	Timestamps
}

// VehicleInput is the create form. Every field is required.
type VehicleInput struct {
	VehiclePlateNumber string `form:"vehiclePlateNumber" json:"vehiclePlateNumber" binding:"required,min=2"`
	VehicleType        string `form:"vehicleType" json:"vehicleType" binding:"required,min=2"`
	VehicleColor       string `form:"vehicleColor" json:"vehicleColor" binding:"required,min=2"`
	VehicleBrand       string `form:"vehicleBrand" json:"vehicleBrand" binding:"required,min=2"`
	VehicleModel       string `form:"vehicleModel" json:"vehicleModel" binding:"required,min=1"`
	VehicleYear        int    `form:"vehicleYear" json:"vehicleYear" binding:"required,vehicleyear"`
}

// UpdateVehicleInput is a partial update; zero fields are left unchanged.
type UpdateVehicleInput struct {
	VehiclePlateNumber string `form:"vehiclePlateNumber" json:"vehiclePlateNumber,omitempty" binding:"omitempty,min=2"`
	VehicleType        string `form:"vehicleType" json:"vehicleType,omitempty" binding:"omitempty,min=2"`
	VehicleColor       string `form:"vehicleColor" json:"vehicleColor,omitempty" binding:"omitempty,min=2"`
	VehicleBrand       string `form:"vehicleBrand" json:"vehicleBrand,omitempty" binding:"omitempty,min=2"`
	VehicleModel       string `form:"vehicleModel" json:"vehicleModel,omitempty" binding:"omitempty,min=1"`
	VehicleYear        int    `form:"vehicleYear" json:"vehicleYear,omitempty" binding:"omitempty,vehicleyear"`
}
