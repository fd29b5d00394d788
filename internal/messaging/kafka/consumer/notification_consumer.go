package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-fleet/internal/events"
	"go-fleet/internal/notify"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeBookingLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notify.Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.booking_lifecycle")
	log.Info("booking lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("booking lifecycle consumer stopped")
				return
			}
			log.Error("fetch booking lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.BookingLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode booking lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		n := notify.Notification{
			EventType:   event.EventType,
			RecipientID: event.RequesterID,
			BookingID:   event.BookingID,
			Message:     bookingMessage(event),
		}
		if err := notifier.Deliver(ctx, n); err != nil {
			log.Error("deliver booking notification failed",
				zap.String("booking_id", event.BookingID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit booking lifecycle message failed", zap.Error(err))
			continue
		}
	}
}

func ConsumeApprovalLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notify.Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.approval_lifecycle")
	log.Info("approval lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval lifecycle consumer stopped")
				return
			}
			log.Error("fetch approval lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.ApprovalLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode approval lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		n := notify.Notification{
			EventType:   event.EventType,
			RecipientID: event.ApproverID,
			BookingID:   event.BookingID,
			Message:     approvalMessage(event),
		}
		if err := notifier.Deliver(ctx, n); err != nil {
			log.Error("deliver approval notification failed",
				zap.String("approval_id", event.ApprovalID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit approval lifecycle message failed", zap.Error(err))
			continue
		}
	}
}

func bookingMessage(e events.BookingLifecycleEvent) string {
	switch e.EventType {
	case events.TypeBookingApproved:
		return fmt.Sprintf("Booking %s has been approved", e.BookingID)
	case events.TypeBookingRejected:
		return fmt.Sprintf("Booking %s has been rejected", e.BookingID)
	case events.TypeBookingCancelled:
		return fmt.Sprintf("Booking %s has been cancelled (%s)", e.BookingID, e.CancelReason)
	case events.TypeBookingAssigned:
		return fmt.Sprintf("Booking %s has been assigned a driver and vehicle", e.BookingID)
	default:
		return fmt.Sprintf("Booking %s status changed to %s", e.BookingID, e.Status)
	}
}

func approvalMessage(e events.ApprovalLifecycleEvent) string {
	switch e.EventType {
	case events.TypeApprovalReminder:
		return fmt.Sprintf("Reminder %d: booking %s is still waiting for your approval", e.ReminderCount, e.BookingID)
	case events.TypeApprovalCc:
		return fmt.Sprintf("FYI: booking %s was submitted by your report", e.BookingID)
	default:
		return fmt.Sprintf("Booking %s is waiting for your approval", e.BookingID)
	}
}
