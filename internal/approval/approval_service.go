package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-fleet/internal/booking"
	"go-fleet/internal/events"
	"go-fleet/internal/messaging/kafka"
	"go-fleet/internal/shared/clock"
	"go-fleet/internal/shared/contextutil"
	"go-fleet/internal/user"

	approvalerrors "go-fleet/internal/approval/errors"
	bookingerrors "go-fleet/internal/booking/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatchSize = 100

// Config holds the routing and escalation policy knobs.
type Config struct {
	// ApprovalTTL is how long a manager approval stays open before the
	// expiry sweep times it out.
	ApprovalTTL time.Duration
	// ReminderInterval is the minimum gap between reminders for one
	// approval.
	ReminderInterval time.Duration
	// ReminderMaxCount caps reminders per approval.
	ReminderMaxCount int
	// CcMinPositionLevel is the requester position level at which the
	// manager is only informed, not asked.
	CcMinPositionLevel int
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	booking.ApprovalGateway

	GetByID(ctx context.Context, id string) (ApprovalResponse, error)
	GetPendingByApprover(ctx context.Context, approverID string) ([]ApprovalResponse, error)
	Approve(ctx context.Context, id, actorID string, req DecideApprovalRequest) (ApprovalResponse, error)
	Reject(ctx context.Context, id, actorID string, req DecideApprovalRequest) (ApprovalResponse, error)

	RunExpirySweep(ctx context.Context) (int, error)
	RunReminderSweep(ctx context.Context) (int, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	bookingRepo booking.Repository
	userRepo    user.Repository
	outbox      kafka.OutboxRepository
	redisClient *redis.Client
	clk         clock.Clock
	cfg         Config
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	bookingRepo booking.Repository,
	userRepo user.Repository,
	outboxRepo kafka.OutboxRepository,
	redisClient *redis.Client,
	clk clock.Clock,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		outbox:      outboxRepo,
		redisClient: redisClient,
		clk:         clk,
		cfg:         cfg,
		logger:      l,
	}
}

// Classify decides the approval route for a freshly created booking and, for
// the manager route, opens the approval inside the caller's transaction.
func (s *service) Classify(ctx context.Context, tx *sql.Tx, b *booking.Booking) (string, error) {
	if !b.IsBusinessTrip {
		s.logger.Debug("classify personal trip auto approved",
			zap.String("booking_id", b.ID.String()),
		)
		return booking.ApprovalAuto, nil
	}

	userQtx := s.userRepo.WithTx(tx)

	manager, err := userQtx.FindManagerOf(ctx, b.RequesterID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("classify requester without manager auto approved",
				zap.String("booking_id", b.ID.String()),
			)
			return booking.ApprovalAuto, nil
		}
		return "", err
	}

	requester, err := userQtx.FindByID(ctx, b.RequesterID.String())
	if err != nil {
		return "", err
	}

	now := s.clk.Now()

	if requester.PositionLevel >= s.cfg.CcMinPositionLevel {
		if err := s.queueApprovalEvent(ctx, tx, events.TypeApprovalCc, &Approval{
			BookingID:   b.ID,
			RequesterID: b.RequesterID,
			ApproverID:  manager.ID,
			ExpiresAt:   now,
		}); err != nil {
			return "", err
		}
		s.logger.Info("classify cc only",
			zap.String("booking_id", b.ID.String()),
			zap.String("manager_id", manager.ID.String()),
			zap.Int("position_level", requester.PositionLevel),
		)
		return booking.ApprovalCcOnly, nil
	}

	a := &Approval{
		ID:          uuid.New(),
		BookingID:   b.ID,
		RequesterID: b.RequesterID,
		ApproverID:  manager.ID,
		Status:      StatusPending,
		ExpiresAt:   now.Add(s.cfg.ApprovalTTL),
	}
	if err := s.repo.WithTx(tx).Create(ctx, a); err != nil {
		s.logger.Error("classify create approval failed",
			zap.String("booking_id", b.ID.String()),
			zap.Error(err),
		)
		return "", err
	}
	if err := s.queueApprovalEvent(ctx, tx, events.TypeApprovalRequired, a); err != nil {
		return "", err
	}

	s.logger.Info("classify manager approval opened",
		zap.String("booking_id", b.ID.String()),
		zap.String("approval_id", a.ID.String()),
		zap.String("approver_id", manager.ID.String()),
		zap.Time("expires_at", a.ExpiresAt),
	)
	return booking.ApprovalManager, nil
}

// ResolveOnBookingCancel closes any open approval when its booking is
// cancelled by the requester.
func (s *service) ResolveOnBookingCancel(ctx context.Context, tx *sql.Tx, bookingID string, actorID *uuid.UUID) error {
	qtx := s.repo.WithTx(tx)
	pending, err := qtx.FindPendingByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	now := s.clk.Now()
	for _, a := range pending {
		if _, err := qtx.UpdateStatusIfPending(ctx, a.ID.String(), StatusCancelled, now, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (ApprovalResponse, error) {
	a, err := s.loadApproval(ctx, id)
	if err != nil {
		return ApprovalResponse{}, err
	}
	return mapToResponse(*a), nil
}

func (s *service) GetPendingByApprover(ctx context.Context, approverID string) ([]ApprovalResponse, error) {
	if _, err := uuid.Parse(approverID); err != nil {
		return nil, approvalerrors.ErrInvalidActorID
	}
	approvals, err := s.repo.FindPendingByApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	resp := make([]ApprovalResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = mapToResponse(a)
	}
	return resp, nil
}

func (s *service) Approve(ctx context.Context, id, actorID string, req DecideApprovalRequest) (ApprovalResponse, error) {
	return s.decide(ctx, id, actorID, req, StatusApproved)
}

func (s *service) Reject(ctx context.Context, id, actorID string, req DecideApprovalRequest) (ApprovalResponse, error) {
	return s.decide(ctx, id, actorID, req, StatusRejected)
}

func (s *service) decide(ctx context.Context, id, actorID string, req DecideApprovalRequest, targetStatus string) (ApprovalResponse, error) {
	s.logger.Debug("approval decision requested",
		zap.String("approval_id", id),
		zap.String("actor_id", actorID),
		zap.String("decision", targetStatus),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ApprovalResponse{}, approvalerrors.ErrInvalidActorID
	}

	a, err := s.loadApproval(ctx, id)
	if err != nil {
		return ApprovalResponse{}, err
	}
	if a.ApproverID != actorUUID {
		s.logger.Warn("approval decision by wrong actor",
			zap.String("approval_id", id),
			zap.String("actor_id", actorID),
			zap.String("approver_id", a.ApproverID.String()),
		)
		return ApprovalResponse{}, approvalerrors.ErrForbiddenApprover
	}
	// Decisions are idempotent: repeating the same terminal outcome is a
	// success, a conflicting one is rejected.
	if a.Status == targetStatus {
		return mapToResponse(*a), nil
	}
	if IsTerminal(a.Status) {
		return ApprovalResponse{}, approvalerrors.ErrApprovalAlreadyResolved
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approval decision begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	now := s.clk.Now()
	respondedBy := actorUUID.String()

	won, err := s.repo.WithTx(tx).UpdateStatusIfPending(ctx, id, targetStatus, now, &respondedBy)
	if err != nil {
		s.logger.Error("approval decision update failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	if !won {
		current, err := s.loadApproval(ctx, id)
		if err != nil {
			return ApprovalResponse{}, err
		}
		if current.Status == targetStatus {
			return mapToResponse(*current), nil
		}
		return ApprovalResponse{}, approvalerrors.ErrApprovalAlreadyResolved
	}

	a.Status = targetStatus
	a.Notes = req.Notes
	a.RespondedAt = &now
	a.RespondedBy = &actorUUID
	if req.Notes != "" {
		if err := s.repo.WithTx(tx).Update(ctx, a); err != nil {
			s.logger.Error("approval decision persist notes failed", zap.Error(err))
			return ApprovalResponse{}, err
		}
	}

	if targetStatus == StatusApproved {
		err = s.advanceBookingOnApprove(ctx, tx, a, actorUUID, now)
	} else {
		err = s.cancelBookingOnReject(ctx, tx, a, actorUUID, now, req.Notes)
	}
	if err != nil {
		return ApprovalResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approval decision commit failed", zap.Error(err))
		return ApprovalResponse{}, err
	}

	s.logger.Info("approval decision success",
		zap.String("approval_id", id),
		zap.String("booking_id", a.BookingID.String()),
		zap.String("decision", targetStatus),
	)
	return mapToResponse(*a), nil
}

func (s *service) advanceBookingOnApprove(ctx context.Context, tx *sql.Tx, a *Approval, actorID uuid.UUID, now time.Time) error {
	qtx := s.bookingRepo.WithTx(tx)
	b, err := qtx.FindByID(ctx, a.BookingID.String())
	if err != nil {
		s.logger.Error("approve load booking failed",
			zap.String("booking_id", a.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
	if !booking.CanTransition(b.Status, booking.StatusPending) {
		s.logger.Warn("approve booking not awaiting approval",
			zap.String("booking_id", b.ID.String()),
			zap.String("status", b.Status),
		)
		return bookingerrors.ErrInvalidStatusTransition
	}

	b.Status = booking.StatusPending
	if err := qtx.Update(ctx, b); err != nil {
		return err
	}
	if err := qtx.AppendTransition(ctx, &booking.BookingTransition{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: booking.StatusPendingApproval,
		ToStatus:   booking.StatusPending,
		ActorID:    &actorID,
		OccurredAt: now,
	}); err != nil {
		return err
	}
	return s.queueBookingEvent(ctx, tx, b, events.TypeBookingApproved, "", "")
}

func (s *service) cancelBookingOnReject(ctx context.Context, tx *sql.Tx, a *Approval, actorID uuid.UUID, now time.Time, notes string) error {
	b, err := s.bookingRepo.WithTx(tx).FindByID(ctx, a.BookingID.String())
	if err != nil {
		return err
	}
	return s.cancelBookingTerminal(ctx, tx, b, &actorID, now, booking.ReasonApprovalRejected, notes, events.TypeBookingRejected)
}

// cancelBookingTerminal moves a booking still sitting in PENDING_APPROVAL to
// CANCELLED with the given reason. A booking that already left that status is
// skipped, not failed.
func (s *service) cancelBookingTerminal(ctx context.Context, tx *sql.Tx, b *booking.Booking, actorID *uuid.UUID, now time.Time, reason, notes, eventType string) error {
	qtx := s.bookingRepo.WithTx(tx)
	if b.Status != booking.StatusPendingApproval {
		s.logger.Warn("cancel on approval outcome skipped, booking moved on",
			zap.String("booking_id", b.ID.String()),
			zap.String("status", b.Status),
		)
		return nil
	}

	b.Status = booking.StatusCancelled
	b.CancelReason = &reason
	b.CancelledBy = actorID
	b.CancelledAt = &now
	if err := qtx.Update(ctx, b); err != nil {
		return err
	}
	if err := qtx.AppendTransition(ctx, &booking.BookingTransition{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: booking.StatusPendingApproval,
		ToStatus:   booking.StatusCancelled,
		ActorID:    actorID,
		OccurredAt: now,
	}); err != nil {
		return err
	}
	return s.queueBookingEvent(ctx, tx, b, eventType, reason, notes)
}

// RunExpirySweep times out PENDING approvals past their deadline and cancels
// the bookings that still wait on them. Each row is guarded by a conditional
// update, so overlapping sweeps never double-cancel.
func (s *service) RunExpirySweep(ctx context.Context) (int, error) {
	now := s.clk.Now()
	expired, err := s.repo.FindExpiredPending(ctx, now, sweepBatchSize)
	if err != nil {
		s.logger.Error("expiry sweep list failed", zap.Error(err))
		return 0, err
	}

	processed := 0
	for _, a := range expired {
		if err := s.expireOne(ctx, a, now); err != nil {
			s.logger.Error("expiry sweep item failed",
				zap.String("approval_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	if processed > 0 {
		s.logger.Info("expiry sweep done",
			zap.Int("expired", processed),
			zap.Int("candidates", len(expired)),
		)
	}
	return processed, nil
}

func (s *service) expireOne(ctx context.Context, a Approval, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Baca booking dulu: kalau gagal di sini approval tetap PENDING dan
	// sweep berikutnya mengulang baris yang sama.
	b, err := s.bookingRepo.WithTx(tx).FindByID(ctx, a.BookingID.String())
	if err != nil {
		return err
	}

	won, err := s.repo.WithTx(tx).UpdateStatusIfPending(ctx, a.ID.String(), StatusExpired, now, nil)
	if err != nil {
		return err
	}
	if !won {
		// Sudah diputus atau di-expire oleh proses lain.
		return nil
	}

	if err := s.cancelBookingTerminal(ctx, tx, b, nil, now, booking.ReasonApprovalTimeout, "", events.TypeBookingCancelled); err != nil {
		return err
	}
	return tx.Commit()
}

// RunReminderSweep nudges approvers whose approvals sit unanswered. Redis
// SetNX dedupes each reminder slot across worker instances.
func (s *service) RunReminderSweep(ctx context.Context) (int, error) {
	now := s.clk.Now()
	due, err := s.repo.FindDueReminders(ctx, now, s.cfg.ReminderInterval, s.cfg.ReminderMaxCount, sweepBatchSize)
	if err != nil {
		s.logger.Error("reminder sweep list failed", zap.Error(err))
		return 0, err
	}

	sent := 0
	for _, a := range due {
		key := fmt.Sprintf("approval:reminder:%s:%d", a.ID, a.ReminderCount+1)
		ok, err := s.redisClient.SetNX(ctx, key, 1, s.cfg.ReminderInterval).Result()
		if err != nil {
			s.logger.Error("reminder sweep dedup failed",
				zap.String("approval_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}

		a.ReminderCount++
		a.LastReminderAt = &now
		if err := s.repo.Update(ctx, &a); err != nil {
			s.logger.Error("reminder sweep update failed",
				zap.String("approval_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.queueApprovalEvent(ctx, nil, events.TypeApprovalReminder, &a); err != nil {
			s.logger.Error("reminder sweep queue event failed",
				zap.String("approval_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("reminder sweep done",
			zap.Int("sent", sent),
			zap.Int("candidates", len(due)),
		)
	}
	return sent, nil
}

func (s *service) loadApproval(ctx context.Context, id string) (*Approval, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, approvalerrors.ErrInvalidApprovalID
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalerrors.ErrApprovalNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *service) queueApprovalEvent(ctx context.Context, tx *sql.Tx, eventType string, a *Approval) error {
	event := events.ApprovalLifecycleEvent{
		EventType:     eventType,
		RequestID:     contextutil.GetRequestID(ctx),
		ApprovalID:    a.ID.String(),
		BookingID:     a.BookingID.String(),
		ApproverID:    a.ApproverID.String(),
		RequesterID:   a.RequesterID.String(),
		ApprovalType:  booking.ApprovalManager,
		ReminderCount: a.ReminderCount,
		ExpiresAt:     a.ExpiresAt,
		OccurredAt:    s.clk.Now(),
	}
	if eventType == events.TypeApprovalCc {
		event.ApprovalType = booking.ApprovalCcOnly
		event.ApprovalID = ""
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
		AggregateType: "approval",
		AggregateID:   a.BookingID.String(),
		EventType:     eventType,
		Topic:         events.ApprovalLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) queueBookingEvent(ctx context.Context, tx *sql.Tx, b *booking.Booking, eventType, cancelReason, notes string) error {
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

func mapToResponse(a Approval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:            a.ID.String(),
		BookingID:     a.BookingID.String(),
		RequesterID:   a.RequesterID.String(),
		ApproverID:    a.ApproverID.String(),
		Status:        a.Status,
		Notes:         a.Notes,
		ExpiresAt:     a.ExpiresAt.Format(time.RFC3339),
		ReminderCount: a.ReminderCount,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
	if a.RespondedAt != nil {
		v := a.RespondedAt.Format(time.RFC3339)
		resp.RespondedAt = &v
	}
	if a.RespondedBy != nil {
		v := a.RespondedBy.String()
		resp.RespondedBy = &v
	}
	return resp
}
