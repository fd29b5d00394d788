package approval

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Approval) error
	FindByID(ctx context.Context, id string) (*Approval, error)
	FindPendingByBooking(ctx context.Context, bookingID string) ([]Approval, error)
	FindPendingByApprover(ctx context.Context, approverID string) ([]Approval, error)
	Update(ctx context.Context, a *Approval) error

	// UpdateStatusIfPending flips the status only when the row is still
	// PENDING. Returns false when another writer resolved it first, which
	// keeps overlapping sweeps and user decisions idempotent. The
	// responded_* columns are written only for approver decisions; expired
	// and cancelled rows were never answered.
	UpdateStatusIfPending(ctx context.Context, id, newStatus string, now time.Time, respondedBy *string) (bool, error)

	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]Approval, error)
	FindDueReminders(ctx context.Context, now time.Time, interval time.Duration, maxCount int, limit int) ([]Approval, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to the caller's transaction.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	if tx == nil {
		return r
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = tx
	return &repository{db: session}
}

func (r *repository) Create(ctx context.Context, a *Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Approval, error) {
	var a Approval
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindPendingByBooking(ctx context.Context, bookingID string) ([]Approval, error) {
	var approvals []Approval
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, StatusPending).
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) FindPendingByApprover(ctx context.Context, approverID string) ([]Approval, error) {
	var approvals []Approval
	err := r.db.WithContext(ctx).
		Where("approver_id = ? AND status = ?", approverID, StatusPending).
		Order("expires_at ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) Update(ctx context.Context, a *Approval) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) UpdateStatusIfPending(ctx context.Context, id, newStatus string, now time.Time, respondedBy *string) (bool, error) {
	updates := map[string]any{
		"status":     newStatus,
		"updated_at": now,
	}
	if newStatus == StatusApproved || newStatus == StatusRejected {
		updates["responded_at"] = now
		updates["responded_by"] = respondedBy
	}
	res := r.db.WithContext(ctx).Model(&Approval{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]Approval, error) {
	var approvals []Approval
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", StatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&approvals).Error
	return approvals, err
}

// FindDueReminders lists PENDING approvals whose last reminder (or creation,
// for the first one) is at least interval in the past and that have not hit
// the reminder cap.
func (r *repository) FindDueReminders(ctx context.Context, now time.Time, interval time.Duration, maxCount int, limit int) ([]Approval, error) {
	cutoff := now.Add(-interval)
	var approvals []Approval
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at > ? AND reminder_count < ?", StatusPending, now, maxCount).
		Where("(last_reminder_at IS NULL AND created_at <= ?) OR last_reminder_at <= ?", cutoff, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&approvals).Error
	return approvals, err
}
