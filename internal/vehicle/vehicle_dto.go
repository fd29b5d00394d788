package vehicle

type CreateVehicleRequest struct {
	PlateNumber      string  `json:"plate_number" binding:"required"`
	VehicleType      string  `json:"vehicle_type" binding:"required"`
	Capacity         int     `json:"capacity" binding:"required,min=1"`
	OdometerKm       float64 `json:"odometer_km" binding:"omitempty,min=0"`
	AssignedDriverID *string `json:"assigned_driver_id" binding:"omitempty,uuid"`
}

type SetVehicleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE IN_USE MAINTENANCE INACTIVE"`
}

type VehicleResponse struct {
	ID               string  `json:"id"`
	PlateNumber      string  `json:"plate_number"`
	VehicleType      string  `json:"vehicle_type"`
	Capacity         int     `json:"capacity"`
	OdometerKm       float64 `json:"odometer_km"`
	Status           string  `json:"status"`
	AssignedDriverID *string `json:"assigned_driver_id,omitempty"`
}
