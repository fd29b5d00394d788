package events

import "time"

const BookingLifecycleTopic = "fleet.booking.lifecycle.v1"

const (
	TypeBookingApproved  = "booking_approved"
	TypeBookingRejected  = "booking_rejected"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingAssigned  = "booking_assigned"
)

type BookingLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	BookingID    string    `json:"booking_id"`
	RequesterID  string    `json:"requester_id"`
	Status       string    `json:"status"`
	DriverID     string    `json:"driver_id,omitempty"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
