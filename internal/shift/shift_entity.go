package shift

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverShift struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DriverID uuid.UUID `gorm:"type:uuid;not null;index:idx_shifts_driver_date"`

	ShiftDate time.Time `gorm:"type:date;not null;index:idx_shifts_driver_date"`
	StartTime time.Time `gorm:"type:timestamptz;not null"`
	EndTime   time.Time `gorm:"type:timestamptz;not null"`

	Status string `gorm:"type:varchar(20);not null;default:'SCHEDULED';index:idx_shifts_date_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (DriverShift) TableName() string {
	return "driver_shifts"
}

// Contains reports whether the half-open window [start, end) fits entirely
// inside the shift's working interval.
func (s DriverShift) Contains(start, end time.Time) bool {
	return !start.Before(s.StartTime) && !end.After(s.EndTime)
}
