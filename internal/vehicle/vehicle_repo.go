package vehicle

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=vehicle_repo.go -destination=mock/vehicle_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, v *Vehicle) error
	FindAll(ctx context.Context) ([]Vehicle, error)
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	FindMatchable(ctx context.Context, minCapacity int, vehicleType *string) ([]Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	if tx == nil {
		return r
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Vehicle, error) {
	var vehicles []Vehicle
	err := r.db.WithContext(ctx).
		Order("plate_number ASC").
		Find(&vehicles).Error
	return vehicles, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

// FindMatchable lists AVAILABLE vehicles with enough seats, ordered by the
// matcher's tie-break (lowest odometer, then lowest id).
func (r *repository) FindMatchable(ctx context.Context, minCapacity int, vehicleType *string) ([]Vehicle, error) {
	db := r.db.WithContext(ctx).
		Where("status = ?", StatusAvailable).
		Where("capacity >= ?", minCapacity)

	if vehicleType != nil && *vehicleType != "" {
		db = db.Where("vehicle_type = ?", *vehicleType)
	}

	var vehicles []Vehicle
	err := db.Order("odometer_km ASC, id ASC").Find(&vehicles).Error
	return vehicles, err
}

func (r *repository) Update(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Save(v).Error
}
