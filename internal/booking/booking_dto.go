package booking

type CreateBookingRequest struct {
	RequesterID    string  `json:"requester_id" binding:"required,uuid"`
	DepartmentID   *string `json:"department_id" binding:"omitempty,uuid"`
	BookingType    string  `json:"booking_type" binding:"required,oneof=SINGLE_TRIP MULTI_STOP BLOCK_SCHEDULE"`
	TripDate       string  `json:"trip_date" binding:"required"`
	StartTime      string  `json:"start_time" binding:"required"`
	EndTime        string  `json:"end_time" binding:"required"`
	EndDate        *string `json:"end_date"`
	PassengerCount int     `json:"passenger_count" binding:"required"`
	VehicleType    *string `json:"vehicle_type"`
	IsBusinessTrip bool    `json:"is_business_trip"`
	Purpose        string  `json:"purpose"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,oneof=USER_REQUEST APPROVAL_REJECTED APPROVAL_TIMEOUT NO_AVAILABILITY"`
	Notes  string `json:"notes"`
}

type CompleteTripRequest struct {
	ActualDistanceKm float64 `json:"actual_distance_km" binding:"omitempty,min=0"`
}

type BookingResponse struct {
	ID               string   `json:"id"`
	BookingNumber    string   `json:"booking_number"`
	RequesterID      string   `json:"requester_id"`
	DepartmentID     *string  `json:"department_id,omitempty"`
	BookingType      string   `json:"booking_type"`
	Status           string   `json:"status"`
	TripDate         string   `json:"trip_date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	EndDate          *string  `json:"end_date,omitempty"`
	PassengerCount   int      `json:"passenger_count"`
	VehicleType      *string  `json:"vehicle_type,omitempty"`
	Purpose          string   `json:"purpose,omitempty"`
	IsBusinessTrip   bool     `json:"is_business_trip"`
	ApprovalType     *string  `json:"approval_type,omitempty"`
	DriverID         *string  `json:"driver_id,omitempty"`
	VehicleID        *string  `json:"vehicle_id,omitempty"`
	ActualDistanceKm *float64 `json:"actual_distance_km,omitempty"`
	CancelReason     *string  `json:"cancel_reason,omitempty"`
	CancelledBy      *string  `json:"cancelled_by,omitempty"`
	CancelledAt      *string  `json:"cancelled_at,omitempty"`
}

type TransitionResponse struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
