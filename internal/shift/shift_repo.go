package shift

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *DriverShift) error
	FindByID(ctx context.Context, id string) (*DriverShift, error)
	FindByDriverAndDate(ctx context.Context, driverID string, date time.Time) ([]DriverShift, error)
	FindMatchableByDate(ctx context.Context, date time.Time) ([]DriverShift, error)
	HasOverlappingShift(ctx context.Context, driverID string, start, end time.Time, excludeID *string) (bool, error)
	Update(ctx context.Context, s *DriverShift) error
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

func (r *repository) Create(ctx context.Context, s *DriverShift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*DriverShift, error) {
	var s DriverShift
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindByDriverAndDate(ctx context.Context, driverID string, date time.Time) ([]DriverShift, error) {
	var shifts []DriverShift
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("shift_date = ?", date).
		Order("start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

// FindMatchableByDate returns all SCHEDULED/ACTIVE shifts on the date. The
// matcher re-reads this each attempt instead of caching.
func (r *repository) FindMatchableByDate(ctx context.Context, date time.Time) ([]DriverShift, error) {
	var shifts []DriverShift
	err := r.db.WithContext(ctx).
		Where("shift_date = ?", date).
		Where("status IN ?", []string{StatusScheduled, StatusActive}).
		Order("driver_id ASC, start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *repository) HasOverlappingShift(ctx context.Context, driverID string, start, end time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&DriverShift{}).
		Where("driver_id = ?", driverID).
		Where("status IN ?", []string{StatusScheduled, StatusActive}).
		Where("start_time < ? AND ? < end_time", end, start)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, s *DriverShift) error {
	return r.db.WithContext(ctx).Save(s).Error
}
