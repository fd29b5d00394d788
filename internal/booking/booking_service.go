package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-fleet/internal/events"
	"go-fleet/internal/messaging/kafka"
	"go-fleet/internal/shared/clock"
	"go-fleet/internal/shared/contextutil"
	"go-fleet/internal/shared/counter"
	"go-fleet/internal/vehicle"

	bookingerrors "go-fleet/internal/booking/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultReserveAttempts = 3

//go:generate mockgen -source=booking_service.go -destination=mock/booking_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateBookingRequest) (BookingResponse, error)
	GetAll(ctx context.Context) ([]BookingResponse, error)
	GetByID(ctx context.Context, id string) (BookingResponse, error)
	GetTransitions(ctx context.Context, id string) ([]TransitionResponse, error)
	MatchAndReserve(ctx context.Context, id string) (BookingResponse, error)
	ConfirmAssignment(ctx context.Context, id, actorID string) (BookingResponse, error)
	StartTrip(ctx context.Context, id, actorID string) (BookingResponse, error)
	CompleteTrip(ctx context.Context, id, actorID string, req CompleteTripRequest) (BookingResponse, error)
	Cancel(ctx context.Context, id, actorID string, req CancelBookingRequest) (BookingResponse, error)
	RedirectExternal(ctx context.Context, id, actorID string) (BookingResponse, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	vehicleRepo     vehicle.Repository
	approvals       ApprovalGateway
	matcher         Matcher
	outbox          kafka.OutboxRepository
	counter         counter.Repository
	clk             clock.Clock
	reserveAttempts int
	logger          *zap.Logger
}

type ServiceConfig struct {
	// ReserveAttempts membatasi retry saat reservasi kalah race.
	ReserveAttempts int
}

func NewService(
	db *sql.DB,
	repo Repository,
	vehicleRepo vehicle.Repository,
	approvals ApprovalGateway,
	matcher Matcher,
	outboxRepo kafka.OutboxRepository,
	counterRepo counter.Repository,
	clk clock.Clock,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("booking.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("booking.service")
	}
	attempts := cfg.ReserveAttempts
	if attempts <= 0 {
		attempts = defaultReserveAttempts
	}
	return &service{
		db:              db,
		repo:            repo,
		vehicleRepo:     vehicleRepo,
		approvals:       approvals,
		matcher:         matcher,
		outbox:          outboxRepo,
		counter:         counterRepo,
		clk:             clk,
		reserveAttempts: attempts,
		logger:          l,
	}
}

func (s *service) Create(ctx context.Context, req CreateBookingRequest) (BookingResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create booking requested",
		zap.String("request_id", rid),
		zap.String("requester_id", req.RequesterID),
		zap.String("booking_type", req.BookingType),
		zap.String("trip_date", req.TripDate),
		zap.Bool("is_business_trip", req.IsBusinessTrip),
	)

	b, err := s.buildBooking(req)
	if err != nil {
		s.logger.Warn("create booking validation failed", zap.Error(err))
		return BookingResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create booking begin tx failed", zap.Error(err))
		return BookingResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	nextVal, err := s.counter.GetNextValue(ctx, "booking_number")
	if err != nil {
		s.logger.Error("create booking generate number failed", zap.Error(err))
		return BookingResponse{}, err
	}
	b.BookingNumber = fmt.Sprintf("BK-%06d", nextVal)
	b.Status = StatusPendingApproval

	if err := qtx.Create(ctx, b); err != nil {
		s.logger.Error("create booking persist failed", zap.Error(err))
		return BookingResponse{}, err
	}

	approvalType, err := s.approvals.Classify(ctx, tx, b)
	if err != nil {
		s.logger.Error("create booking classification failed", zap.Error(err))
		return BookingResponse{}, err
	}
	b.ApprovalType = &approvalType
	if approvalType != ApprovalManager {
		b.Status = StatusPending
	}
	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Error("create booking persist failed", zap.Error(err))
		return BookingResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create booking commit failed", zap.Error(err))
		return BookingResponse{}, err
	}

	s.logger.Info("create booking success",
		zap.String("request_id", rid),
		zap.String("booking_id", b.ID.String()),
		zap.String("booking_number", b.BookingNumber),
		zap.String("status", b.Status),
		zap.String("approval_type", approvalType),
	)
	return mapToResponse(*b), nil
}

func (s *service) buildBooking(req CreateBookingRequest) (*Booking, error) {
	requesterID, err := uuid.Parse(req.RequesterID)
	if err != nil {
		return nil, bookingerrors.ErrInvalidRequesterID
	}
	if req.PassengerCount < 1 {
		return nil, bookingerrors.ErrInvalidPassengerCount
	}

	tripDate, err := parseDate(req.TripDate)
	if err != nil {
		return nil, err
	}
	startTime, err := parseTimeOnDate(tripDate, req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseTimeOnDate(tripDate, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !startTime.Before(endTime) {
		return nil, bookingerrors.ErrInvalidTimeWindow
	}

	b := &Booking{
		ID:             uuid.New(),
		RequesterID:    requesterID,
		BookingType:    req.BookingType,
		TripDate:       tripDate,
		StartTime:      startTime,
		EndTime:        endTime,
		PassengerCount: req.PassengerCount,
		VehicleType:    req.VehicleType,
		IsBusinessTrip: req.IsBusinessTrip,
		Purpose:        req.Purpose,
	}

	if req.DepartmentID != nil && *req.DepartmentID != "" {
		deptID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return nil, bookingerrors.ErrInvalidRequesterID
		}
		b.DepartmentID = &deptID
	}

	if req.BookingType == TypeBlockSchedule && req.EndDate != nil && *req.EndDate != "" {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		if endDate.Before(tripDate) {
			return nil, bookingerrors.ErrInvalidEndDate
		}
		b.EndDate = &endDate
	}

	return b, nil
}

func (s *service) GetAll(ctx context.Context) ([]BookingResponse, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = mapToResponse(b)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (BookingResponse, error) {
	b, err := s.loadBooking(ctx, s.repo, id)
	if err != nil {
		return BookingResponse{}, err
	}
	return mapToResponse(*b), nil
}

func (s *service) GetTransitions(ctx context.Context, id string) ([]TransitionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, bookingerrors.ErrInvalidBookingID
	}
	transitions, err := s.repo.FindTransitions(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]TransitionResponse, len(transitions))
	for i, t := range transitions {
		resp[i] = TransitionResponse{
			FromStatus: t.FromStatus,
			ToStatus:   t.ToStatus,
			OccurredAt: t.OccurredAt.Format(time.RFC3339),
		}
		if t.ActorID != nil {
			resp[i].ActorID = t.ActorID.String()
		}
	}
	return resp, nil
}

func (s *service) MatchAndReserve(ctx context.Context, id string) (BookingResponse, error) {
	s.logger.Debug("match and reserve requested", zap.String("booking_id", id))

	b, err := s.loadBooking(ctx, s.repo, id)
	if err != nil {
		return BookingResponse{}, err
	}
	if b.Status != StatusPending {
		s.logger.Warn("match and reserve invalid status",
			zap.String("booking_id", id),
			zap.String("status", b.Status),
		)
		return BookingResponse{}, bookingerrors.ErrInvalidStatusTransition
	}

	for attempt := 1; attempt <= s.reserveAttempts; attempt++ {
		cand, err := s.matcher.Match(ctx, b)
		if err != nil {
			return BookingResponse{}, err
		}

		ok, err := s.reserveOnce(ctx, b, cand)
		if err != nil {
			s.logger.Error("reserve resources failed",
				zap.String("booking_id", id),
				zap.Error(err),
			)
			return BookingResponse{}, err
		}
		if ok {
			s.logger.Info("match and reserve success",
				zap.String("booking_id", id),
				zap.String("driver_id", cand.DriverID.String()),
				zap.String("vehicle_id", cand.VehicleID.String()),
				zap.Int("attempt", attempt),
			)
			return mapToResponse(*b), nil
		}

		// Guard gagal: ada reservasi konkuren yang menang. Baca ulang dan
		// coba kandidat berikutnya.
		s.logger.Warn("reservation lost race, retrying",
			zap.String("booking_id", id),
			zap.Int("attempt", attempt),
		)
		b, err = s.loadBooking(ctx, s.repo, id)
		if err != nil {
			return BookingResponse{}, err
		}
		if b.Status != StatusPending {
			return BookingResponse{}, bookingerrors.ErrInvalidStatusTransition
		}
	}

	return BookingResponse{}, bookingerrors.ErrReservationConflict
}

// reserveOnce runs one optimistic reservation attempt. The guard update and
// the audit row share a transaction so the trail never misses the
// PENDING→CONFIRMED hop.
func (s *service) reserveOnce(ctx context.Context, b *Booking, cand MatchCandidate) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ok, err := qtx.ReserveResources(ctx, b, cand.DriverID, cand.VehicleID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	fromStatus := b.Status
	b.DriverID = &cand.DriverID
	b.VehicleID = &cand.VehicleID
	b.Status = StatusConfirmed
	b.Version++

	if err := qtx.AppendTransition(ctx, &BookingTransition{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: fromStatus,
		ToStatus:   StatusConfirmed,
		OccurredAt: s.clk.Now(),
	}); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) ConfirmAssignment(ctx context.Context, id, actorID string) (BookingResponse, error) {
	return s.transitionBooking(ctx, id, actorID, StatusAssigned, func(ctx context.Context, tx *sql.Tx, b *Booking) error {
		return s.queueBookingEvent(ctx, tx, b, events.TypeBookingAssigned, "", "")
	})
}

func (s *service) StartTrip(ctx context.Context, id, actorID string) (BookingResponse, error) {
	return s.transitionBooking(ctx, id, actorID, StatusInProgress, func(ctx context.Context, tx *sql.Tx, b *Booking) error {
		if b.VehicleID == nil {
			return nil
		}
		v, err := s.vehicleRepo.FindByID(ctx, b.VehicleID.String())
		if err != nil {
			return err
		}
		v.Status = vehicle.StatusInUse
		return s.vehicleRepo.Update(ctx, v)
	})
}

func (s *service) CompleteTrip(ctx context.Context, id, actorID string, req CompleteTripRequest) (BookingResponse, error) {
	if req.ActualDistanceKm < 0 {
		return BookingResponse{}, bookingerrors.ErrActualDistanceRequired
	}
	return s.transitionBooking(ctx, id, actorID, StatusCompleted, func(ctx context.Context, tx *sql.Tx, b *Booking) error {
		if req.ActualDistanceKm > 0 {
			b.ActualDistanceKm = &req.ActualDistanceKm
		}
		if b.VehicleID == nil {
			return nil
		}
		v, err := s.vehicleRepo.FindByID(ctx, b.VehicleID.String())
		if err != nil {
			return err
		}
		v.Status = vehicle.StatusAvailable
		v.OdometerKm += req.ActualDistanceKm
		return s.vehicleRepo.Update(ctx, v)
	})
}

func (s *service) Cancel(ctx context.Context, id, actorID string, req CancelBookingRequest) (BookingResponse, error) {
	s.logger.Debug("cancel booking requested",
		zap.String("booking_id", id),
		zap.String("actor_id", actorID),
		zap.String("reason", req.Reason),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return BookingResponse{}, bookingerrors.ErrInvalidActorID
	}
	reason := req.Reason
	if reason == "" {
		reason = ReasonUserRequest
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel booking begin tx failed", zap.Error(err))
		return BookingResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := s.loadBooking(ctx, qtx, id)
	if err != nil {
		return BookingResponse{}, err
	}
	if !isAllowedStatusTransition(b.Status, StatusCancelled) {
		s.logger.Warn("cancel booking invalid status",
			zap.String("booking_id", id),
			zap.String("status", b.Status),
		)
		return BookingResponse{}, bookingerrors.ErrInvalidStatusTransition
	}

	fromStatus := b.Status
	releasedDriver, releasedVehicle := "", ""
	if b.DriverID != nil {
		releasedDriver = b.DriverID.String()
	}
	if b.VehicleID != nil {
		releasedVehicle = b.VehicleID.String()
	}

	// Kembalikan resource ke pool sebelum menandai CANCELLED.
	b.DriverID = nil
	b.VehicleID = nil

	if fromStatus == StatusPendingApproval {
		if err := s.approvals.ResolveOnBookingCancel(ctx, tx, id, &actorUUID); err != nil {
			s.logger.Error("cancel booking resolve approval failed",
				zap.String("booking_id", id),
				zap.Error(err),
			)
			return BookingResponse{}, err
		}
	}

	now := s.clk.Now()
	b.Status = StatusCancelled
	b.CancelReason = &reason
	b.CancelledBy = &actorUUID
	b.CancelledAt = &now
	b.Version++

	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Error("cancel booking persist failed", zap.Error(err))
		return BookingResponse{}, err
	}
	if err := qtx.AppendTransition(ctx, &BookingTransition{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: fromStatus,
		ToStatus:   StatusCancelled,
		ActorID:    &actorUUID,
		OccurredAt: now,
	}); err != nil {
		return BookingResponse{}, err
	}

	if err := s.queueBookingEvent(ctx, tx, b, events.TypeBookingCancelled, reason, req.Notes); err != nil {
		return BookingResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel booking commit failed", zap.Error(err))
		return BookingResponse{}, err
	}

	s.logger.Info("cancel booking success",
		zap.String("booking_id", id),
		zap.String("from_status", fromStatus),
		zap.String("reason", reason),
		zap.String("released_driver_id", releasedDriver),
		zap.String("released_vehicle_id", releasedVehicle),
	)
	return mapToResponse(*b), nil
}

func (s *service) RedirectExternal(ctx context.Context, id, actorID string) (BookingResponse, error) {
	return s.transitionBooking(ctx, id, actorID, StatusRedirectedExternal, nil)
}

type transitionHook func(ctx context.Context, tx *sql.Tx, b *Booking) error

func (s *service) transitionBooking(ctx context.Context, id, actorID, targetStatus string, hook transitionHook) (BookingResponse, error) {
	s.logger.Debug("transition booking requested",
		zap.String("booking_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", targetStatus),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return BookingResponse{}, bookingerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition booking begin tx failed", zap.Error(err))
		return BookingResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := s.loadBooking(ctx, qtx, id)
	if err != nil {
		return BookingResponse{}, err
	}
	if !isAllowedStatusTransition(b.Status, targetStatus) {
		s.logger.Warn("transition booking invalid",
			zap.String("booking_id", id),
			zap.String("from_status", b.Status),
			zap.String("to_status", targetStatus),
		)
		return BookingResponse{}, bookingerrors.ErrInvalidStatusTransition
	}

	fromStatus := b.Status
	b.Status = targetStatus

	if hook != nil {
		if err := hook(ctx, tx, b); err != nil {
			s.logger.Error("transition booking hook failed",
				zap.String("booking_id", id),
				zap.String("target_status", targetStatus),
				zap.Error(err),
			)
			return BookingResponse{}, err
		}
	}

	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Error("transition booking persist failed",
			zap.String("booking_id", id),
			zap.Error(err),
		)
		return BookingResponse{}, err
	}
	if err := qtx.AppendTransition(ctx, &BookingTransition{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: fromStatus,
		ToStatus:   targetStatus,
		ActorID:    &actorUUID,
		OccurredAt: s.clk.Now(),
	}); err != nil {
		return BookingResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition booking commit failed", zap.Error(err))
		return BookingResponse{}, err
	}

	s.logger.Info("transition booking success",
		zap.String("booking_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*b), nil
}

func (s *service) queueBookingEvent(ctx context.Context, tx *sql.Tx, b *Booking, eventType, cancelReason, notes string) error {
	event := events.BookingLifecycleEvent{
		EventType:    eventType,
		RequestID:    contextutil.GetRequestID(ctx),
		BookingID:    b.ID.String(),
		RequesterID:  b.RequesterID.String(),
		Status:       b.Status,
		CancelReason: cancelReason,
		Notes:        notes,
		OccurredAt:   s.clk.Now(),
	}
	if b.DriverID != nil {
		event.DriverID = b.DriverID.String()
	}
	if b.VehicleID != nil {
		event.VehicleID = b.VehicleID.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outboxRepo := s.outbox
	if tx != nil {
		outboxRepo = s.outbox.WithTx(tx)
	}
	return outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "booking",
		AggregateID:   b.ID.String(),
		EventType:     eventType,
		Topic:         events.BookingLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) loadBooking(ctx context.Context, repo Repository, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, bookingerrors.ErrInvalidBookingID
	}
	b, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingerrors.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, bookingerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseTimeOnDate(date time.Time, v string) (time.Time, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return time.Time{}, bookingerrors.ErrInvalidTimeFormat
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func mapToResponse(b Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID.String(),
		BookingNumber:  b.BookingNumber,
		RequesterID:    b.RequesterID.String(),
		BookingType:    b.BookingType,
		Status:         b.Status,
		TripDate:       b.TripDate.Format("2006-01-02"),
		StartTime:      b.StartTime.Format(time.RFC3339),
		EndTime:        b.EndTime.Format(time.RFC3339),
		PassengerCount: b.PassengerCount,
		VehicleType:    b.VehicleType,
		Purpose:        b.Purpose,
		IsBusinessTrip: b.IsBusinessTrip,
		ApprovalType:   b.ApprovalType,
	}
	if b.DepartmentID != nil {
		v := b.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if b.EndDate != nil {
		v := b.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	if b.DriverID != nil {
		v := b.DriverID.String()
		resp.DriverID = &v
	}
	if b.VehicleID != nil {
		v := b.VehicleID.String()
		resp.VehicleID = &v
	}
	resp.ActualDistanceKm = b.ActualDistanceKm
	resp.CancelReason = b.CancelReason
	if b.CancelledBy != nil {
		v := b.CancelledBy.String()
		resp.CancelledBy = &v
	}
	if b.CancelledAt != nil {
		v := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}
