package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSingleTrip    = "SINGLE_TRIP"
	TypeMultiStop     = "MULTI_STOP"
	TypeBlockSchedule = "BLOCK_SCHEDULE"
)

const (
	ApprovalManager = "MANAGER_APPROVAL"
	ApprovalCcOnly  = "CC_ONLY"
	ApprovalAuto    = "AUTO_APPROVED"
)

const (
	ReasonUserRequest      = "USER_REQUEST"
	ReasonApprovalRejected = "APPROVAL_REJECTED"
	ReasonApprovalTimeout  = "APPROVAL_TIMEOUT"
	ReasonNoAvailability   = "NO_AVAILABILITY"
)

type Booking struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingNumber string     `gorm:"size:20;not null;uniqueIndex:uq_booking_number"`
	RequesterID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_requester"`
	DepartmentID  *uuid.UUID `gorm:"type:uuid"`

	BookingType string `gorm:"type:varchar(20);not null;default:'SINGLE_TRIP'"`
	Status      string `gorm:"type:varchar(20);not null;index:idx_bookings_status"`

	TripDate  time.Time  `gorm:"type:date;not null;index:idx_bookings_trip_date"`
	StartTime time.Time  `gorm:"type:timestamptz;not null"`
	EndTime   time.Time  `gorm:"type:timestamptz;not null"`
	EndDate   *time.Time `gorm:"type:date"`

	PassengerCount int     `gorm:"type:int;not null;default:1"`
	VehicleType    *string `gorm:"type:varchar(30)"`
	Purpose        string  `gorm:"type:text"`

	IsBusinessTrip bool    `gorm:"not null;default:false"`
	ApprovalType   *string `gorm:"type:varchar(20)"`

	// DriverID dan VehicleID selalu terisi berpasangan atau kosong berdua.
	DriverID  *uuid.UUID `gorm:"type:uuid;index:idx_bookings_driver"`
	VehicleID *uuid.UUID `gorm:"type:uuid;index:idx_bookings_vehicle"`

	ActualDistanceKm *float64 `gorm:"type:numeric(10,1)"`

	// Cancellation fields terisi hanya saat status CANCELLED.
	CancelReason *string    `gorm:"type:varchar(30)"`
	CancelledBy  *uuid.UUID `gorm:"type:uuid"`
	CancelledAt  *time.Time `gorm:"type:timestamptz"`

	// Version menjadi guard optimistic saat reservasi resource.
	Version int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BookingTransition is the append-only audit trail: every status change adds
// a row in the same transaction, prior rows are never rewritten.
type BookingTransition struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_booking_transitions_booking"`
	FromStatus string     `gorm:"type:varchar(20);not null"`
	ToStatus   string     `gorm:"type:varchar(20);not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	OccurredAt time.Time  `gorm:"type:timestamptz;not null"`
}

func (BookingTransition) TableName() string {
	return "booking_transitions"
}
