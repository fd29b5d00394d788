package approval

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

// Approval is one manager decision request for one booking. A booking has at
// most one non-terminal approval at a time.
type Approval struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID   uuid.UUID `gorm:"type:uuid;not null;index:idx_approvals_booking"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null"`
	ApproverID  uuid.UUID `gorm:"type:uuid;not null;index:idx_approvals_approver"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_approvals_status"`
	Notes  string `gorm:"type:text"`

	// ExpiresAt adalah deadline auto-timeout. Sweep mengubah PENDING yang
	// lewat deadline menjadi EXPIRED.
	ExpiresAt time.Time `gorm:"type:timestamptz;not null;index:idx_approvals_expires"`

	ReminderCount  int        `gorm:"type:int;not null;default:0"`
	LastReminderAt *time.Time `gorm:"type:timestamptz"`
	RespondedAt    *time.Time `gorm:"type:timestamptz"`
	RespondedBy    *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Approval) TableName() string {
	return "booking_approvals"
}

func IsTerminal(status string) bool {
	switch status {
	case StatusApproved, StatusRejected, StatusExpired, StatusCancelled:
		return true
	}
	return false
}
