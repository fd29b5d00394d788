package shift

import (
	"context"
	"database/sql"
	"errors"
	"time"

	shifterrors "go-fleet/internal/shift/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_service.go -destination=mock/shift_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	GetByDriverAndDate(ctx context.Context, driverID, date string) ([]ShiftResponse, error)
	Activate(ctx context.Context, id string) (ShiftResponse, error)
	Complete(ctx context.Context, id string) (ShiftResponse, error)
	MarkAbsent(ctx context.Context, id string) (ShiftResponse, error)
	Cancel(ctx context.Context, id string) (ShiftResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("shift.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error) {
	s.logger.Debug("create shift requested",
		zap.String("driver_id", req.DriverID),
		zap.String("shift_date", req.ShiftDate),
	)

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidDriverID
	}
	shiftDate, err := parseDate(req.ShiftDate)
	if err != nil {
		return ShiftResponse{}, err
	}
	startTime, err := parseTimeOnDate(shiftDate, req.StartTime)
	if err != nil {
		return ShiftResponse{}, err
	}
	endTime, err := parseTimeOnDate(shiftDate, req.EndTime)
	if err != nil {
		return ShiftResponse{}, err
	}
	if !startTime.Before(endTime) {
		return ShiftResponse{}, shifterrors.ErrInvalidTimeRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create shift begin tx failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingShift(ctx, req.DriverID, startTime, endTime, nil)
	if err != nil {
		s.logger.Error("create shift overlap check failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	if overlap {
		s.logger.Warn("create shift overlap detected",
			zap.String("driver_id", req.DriverID),
			zap.String("shift_date", req.ShiftDate),
		)
		return ShiftResponse{}, shifterrors.ErrShiftOverlap
	}

	row := &DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ShiftDate: shiftDate,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    StatusScheduled,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("create shift persist failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create shift commit failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	s.logger.Info("create shift success",
		zap.String("shift_id", row.ID.String()),
		zap.String("driver_id", req.DriverID),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetByDriverAndDate(ctx context.Context, driverID, date string) ([]ShiftResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, shifterrors.ErrInvalidDriverID
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	shifts, err := s.repo.FindByDriverAndDate(ctx, driverID, d)
	if err != nil {
		return nil, err
	}
	resp := make([]ShiftResponse, len(shifts))
	for i, sh := range shifts {
		resp[i] = mapToResponse(sh)
	}
	return resp, nil
}

func (s *service) Activate(ctx context.Context, id string) (ShiftResponse, error) {
	return s.transitionShiftStatus(ctx, id, StatusActive)
}

func (s *service) Complete(ctx context.Context, id string) (ShiftResponse, error) {
	return s.transitionShiftStatus(ctx, id, StatusCompleted)
}

func (s *service) MarkAbsent(ctx context.Context, id string) (ShiftResponse, error) {
	return s.transitionShiftStatus(ctx, id, StatusAbsent)
}

func (s *service) Cancel(ctx context.Context, id string) (ShiftResponse, error) {
	return s.transitionShiftStatus(ctx, id, StatusCancelled)
}

func (s *service) transitionShiftStatus(ctx context.Context, id, targetStatus string) (ShiftResponse, error) {
	s.logger.Debug("transition shift status requested",
		zap.String("shift_id", id),
		zap.String("target_status", targetStatus),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition shift status begin tx failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, shifterrors.ErrShiftNotFound
		}
		return ShiftResponse{}, err
	}
	if !isAllowedStatusTransition(row.Status, targetStatus) {
		s.logger.Warn("transition shift status invalid",
			zap.String("shift_id", id),
			zap.String("from_status", row.Status),
			zap.String("to_status", targetStatus),
		)
		return ShiftResponse{}, shifterrors.ErrInvalidStatusTransition
	}

	row.Status = targetStatus
	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("transition shift status persist failed",
			zap.String("shift_id", id),
			zap.Error(err),
		)
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("transition shift status commit failed",
			zap.String("shift_id", id),
			zap.Error(err),
		)
		return ShiftResponse{}, err
	}

	s.logger.Info("transition shift status success",
		zap.String("shift_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*row), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, shifterrors.ErrInvalidDateFormat
	}
	return t, nil
}

// parseTimeOnDate accepts "15:04" and anchors it to the shift date.
func parseTimeOnDate(date time.Time, v string) (time.Time, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return time.Time{}, shifterrors.ErrInvalidDateFormat
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func mapToResponse(s DriverShift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID.String(),
		DriverID:  s.DriverID.String(),
		ShiftDate: s.ShiftDate.Format("2006-01-02"),
		StartTime: s.StartTime.Format(time.RFC3339),
		EndTime:   s.EndTime.Format(time.RFC3339),
		Status:    s.Status,
	}
}
