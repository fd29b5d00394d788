package shift

type CreateShiftRequest struct {
	DriverID  string `json:"driver_id" binding:"required,uuid"`
	ShiftDate string `json:"shift_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type ShiftResponse struct {
	ID        string `json:"id"`
	DriverID  string `json:"driver_id"`
	ShiftDate string `json:"shift_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}
