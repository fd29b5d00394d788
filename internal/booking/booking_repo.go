package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=booking_repo.go -destination=mock/booking_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id string) (*Booking, error)
	FindAll(ctx context.Context) ([]Booking, error)
	FindAllByRequester(ctx context.Context, requesterID string) ([]Booking, error)
	Update(ctx context.Context, b *Booking) error
	AppendTransition(ctx context.Context, t *BookingTransition) error
	FindTransitions(ctx context.Context, bookingID string) ([]BookingTransition, error)

	// FindResourceHolding returns the CONFIRMED/ASSIGNED/IN_PROGRESS
	// bookings overlapping the half-open window [start, end).
	FindResourceHolding(ctx context.Context, start, end time.Time) ([]Booking, error)
	CountResourceHoldingByDriverOnDate(ctx context.Context, driverID uuid.UUID, date time.Time) (int64, error)

	// ReserveResources is the optimistic check-and-set: it binds the pair
	// and moves the booking to CONFIRMED only if the version still matches,
	// the status is still PENDING, and no resource-holding booking overlaps
	// the window for either resource. Returns false when the guard failed.
	ReserveResources(ctx context.Context, b *Booking, driverID, vehicleID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to the caller's transaction, so booking writes
// commit or roll back together with approvals and outbox rows.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	if tx == nil {
		return r
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) FindAll(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Order("trip_date DESC, start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) FindAllByRequester(ctx context.Context, requesterID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("trip_date DESC, start_time DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) AppendTransition(ctx context.Context, t *BookingTransition) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindTransitions(ctx context.Context, bookingID string) ([]BookingTransition, error) {
	var transitions []BookingTransition
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("occurred_at ASC").
		Find(&transitions).Error
	return transitions, err
}

func (r *repository) FindResourceHolding(ctx context.Context, start, end time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", ResourceHoldingStatuses).
		Where("start_time < ? AND ? < end_time", end, start).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) CountResourceHoldingByDriverOnDate(ctx context.Context, driverID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("driver_id = ?", driverID).
		Where("trip_date = ?", date).
		Where("status IN ?", ResourceHoldingStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) ReserveResources(ctx context.Context, b *Booking, driverID, vehicleID uuid.UUID) (bool, error) {
	// Satu statement atomik: guard versi + status + predikat "tidak ada
	// booking overlap" dievaluasi bersama penulisan reservasi, sehingga dua
	// request konkuren tidak mungkin sama-sama lolos.
	res := r.db.WithContext(ctx).Exec(`
UPDATE bookings
SET driver_id = ?, vehicle_id = ?, status = ?, version = version + 1, updated_at = NOW()
WHERE id = ?
	AND version = ?
	AND status = ?
	AND NOT EXISTS (
		SELECT 1 FROM bookings other
		WHERE other.id <> bookings.id
			AND other.status IN ?
			AND (other.driver_id = ? OR other.vehicle_id = ?)
			AND other.start_time < ? AND ? < other.end_time
	)
`,
		driverID, vehicleID, StatusConfirmed,
		b.ID,
		b.Version,
		StatusPending,
		ResourceHoldingStatuses,
		driverID, vehicleID,
		b.EndTime, b.StartTime,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
