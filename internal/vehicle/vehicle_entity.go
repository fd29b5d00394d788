package vehicle

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusAvailable   = "AVAILABLE"
	StatusInUse       = "IN_USE"
	StatusMaintenance = "MAINTENANCE"
	StatusInactive    = "INACTIVE"
)

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlateNumber string    `gorm:"size:20;not null;uniqueIndex:uq_vehicle_plate"`
	VehicleType string    `gorm:"type:varchar(30);not null"`
	Capacity    int       `gorm:"type:int;not null"`
	OdometerKm  float64   `gorm:"type:numeric(10,1);not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;default:'AVAILABLE';index:idx_vehicles_status"`

	// AssignedDriverID mengikat kendaraan ke satu driver tetap. Kendaraan
	// terikat hanya boleh dipasangkan dengan driver tersebut saat matching.
	AssignedDriverID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusInactive:
		return true
	default:
		return false
	}
}
