package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleRequester  = "REQUESTER"
	RoleManager    = "MANAGER"
	RoleDriver     = "DRIVER"
	RoleDispatcher = "DISPATCHER"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName     string     `gorm:"size:255;not null"`
	Email        string     `gorm:"size:255;uniqueIndex:uq_user_email"`
	Role         string     `gorm:"type:varchar(20);not null;default:'REQUESTER'"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`

	// ManagerID membentuk pohon pelaporan. Siklus ditolak saat assignment,
	// sehingga lookup approval cukup satu hop.
	ManagerID     *uuid.UUID `gorm:"type:uuid;index"`
	PositionLevel int        `gorm:"type:int;not null;default:1"`
	IsActive      bool       `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Manager *User `gorm:"foreignKey:ManagerID;references:ID"`
}
